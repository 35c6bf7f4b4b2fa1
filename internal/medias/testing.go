package medias

import (
	"context"
	"fmt"
	"os"
)

// CopyConverter simply copies the source file to the destination path.
// Useful in tests to avoid waiting for a command like ffmpeg to finish.
type CopyConverter struct {
	listeners []func(cmd string, args ...string)

	// Err, when set, is returned by every conversion to simulate a corrupt image.
	Err error
}

func NewCopyConverter() *CopyConverter {
	return &CopyConverter{}
}

func (c *CopyConverter) OnPreGeneration(fn func(cmd string, args ...string)) {
	c.listeners = append(c.listeners, fn)
}

func (c *CopyConverter) notifyListeners(cmd string, args ...string) {
	for _, fn := range c.listeners {
		fn(cmd, args...)
	}
}

func (c *CopyConverter) ToWebP(ctx context.Context, src, dest string, dimensions Dimensions, quality int) error {
	c.notifyListeners("copy", "-i", src, fmt.Sprintf("-q:v %d", quality), dest)
	return c.copy(ctx, src, dest)
}

func (c *CopyConverter) ToPNG(ctx context.Context, src, dest string, dimensions Dimensions) error {
	c.notifyListeners("copy", "-i", src, dest)
	return c.copy(ctx, src, dest)
}

func (c *CopyConverter) copy(ctx context.Context, src, dest string) error {
	if c.Err != nil {
		return c.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}
