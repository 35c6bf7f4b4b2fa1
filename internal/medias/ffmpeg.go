package medias

import (
	"context"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

/*
 * We use the tool ffmpeg to reencode images.
 * It's a large external dependency but a single command covers every
 * source format we care about (PNG, JPEG, GIF, WebP).
 *
 * Scaling while keeping the aspect ratio (see https://trac.ffmpeg.org/wiki/Scaling):
 *    $ ffmpeg -i input.png -vf scale=1280:-1 output.webp
 */

type FFmpegConverter struct {
	exe       string
	listeners []func(cmd string, args ...string)
}

func NewFFmpegConverter() (*FFmpegConverter, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, errors.New("executable 'ffmpeg' not found in $PATH")
	}
	return &FFmpegConverter{
		exe: path,
	}, nil
}

func (c *FFmpegConverter) OnPreGeneration(fn func(cmd string, args ...string)) {
	c.listeners = append(c.listeners, fn)
}

func (c *FFmpegConverter) notifyListeners(cmd string, args ...string) {
	for _, fn := range c.listeners {
		fn(cmd, args...)
	}
}

func (c *FFmpegConverter) ToWebP(ctx context.Context, srcPath, destPath string, dimensions Dimensions, quality int) error {
	if err := checkExtension(destPath, ".webp"); err != nil {
		return err
	}
	var extraArgs []string
	if quality > 0 {
		extraArgs = append(extraArgs, "-q:v", fmt.Sprint(quality))
	}
	return c.convert(ctx, srcPath, destPath, dimensions, extraArgs)
}

func (c *FFmpegConverter) ToPNG(ctx context.Context, srcPath, destPath string, dimensions Dimensions) error {
	if err := checkExtension(destPath, ".png"); err != nil {
		return err
	}
	return c.convert(ctx, srcPath, destPath, dimensions, nil)
}

func (c *FFmpegConverter) convert(ctx context.Context, srcPath, destPath string, dimensions Dimensions, extraArgs []string) error {
	// Check src file exists
	if _, err := os.Stat(srcPath); err != nil {
		return err
	}

	var cmdFilters []string

	// Apply scaling if required, but never upscale
	if !dimensions.Zero() {
		srcDimensions, _ := ReadImageDimensions(srcPath)
		if srcDimensions.LargerThan(dimensions.Width) {
			// Scale the longer dimension to keep the aspect ratio
			if srcDimensions.Portrait() {
				cmdFilters = append(cmdFilters, fmt.Sprintf("scale=-1:%d", dimensions.Height))
			} else {
				cmdFilters = append(cmdFilters, fmt.Sprintf("scale=%d:-1", dimensions.Width))
			}
		}
	}

	var args []string
	args = append(args, "-y", "-i", srcPath)
	if len(cmdFilters) > 0 {
		args = append(args, "-vf", strings.Join(cmdFilters, ","))
	}
	args = append(args, extraArgs...)
	args = append(args, destPath)

	c.notifyListeners(c.exe, args...)
	cmd := exec.CommandContext(ctx, c.exe, args...)

	// Dump output to troubleshoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s", output)
	}
	return err
}

func checkExtension(destPath, extension string) error {
	destExt := strings.ToLower(filepath.Ext(destPath))
	if destExt != extension {
		return fmt.Errorf("target file must use extension %s. Got: %s", extension, destExt)
	}
	return nil
}
