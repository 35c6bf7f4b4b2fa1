package medias

import (
	"context"
	"fmt"
	"image"
	"os"
)

// Dimensions regroups the width and height of an image.
type Dimensions struct {
	Width  int
	Height int
}

func ResizeTo(maxWidthOrHeight int) Dimensions {
	return Dimensions{
		Width:  maxWidthOrHeight,
		Height: maxWidthOrHeight,
	}
}

func OriginalSize() Dimensions {
	return Dimensions{
		Width:  0,
		Height: 0,
	}
}

// Zero returns if the dimensions are not available.
func (d Dimensions) Zero() bool {
	return d.Height == 0 && d.Width == 0
}

func (d Dimensions) Landscape() bool {
	if d.Zero() {
		return false
	}
	return d.Width > d.Height
}

func (d Dimensions) Portrait() bool {
	if d.Zero() {
		return false
	}
	return d.Width < d.Height
}

// LargerThan returns if at least one dimension exceeds the given size.
// LargerThan is conservative and returns true if dimensions are not available.
func (d Dimensions) LargerThan(widthOrHeight int) bool {
	if d.Zero() {
		return true
	}
	return d.Height > widthOrHeight || d.Width > widthOrHeight
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ReadImageDimensions extracts the dimensions from a GIF/PNG/JPEG/WebP file.
func ReadImageDimensions(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()
	config, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// Converter reencodes images for publication.
// Implementations must honor the context deadline so a single corrupt
// image cannot stall a whole publishing run.
type Converter interface {
	OnPreGeneration(func(cmd string, args ...string))
	// ToWebP reencodes a picture to the lossy WebP format.
	ToWebP(ctx context.Context, src, dest string, dimensions Dimensions, quality int) error
	// ToPNG reencodes a picture to PNG, used as near-lossless fallback.
	ToPNG(ctx context.Context, src, dest string, dimensions Dimensions) error
}
