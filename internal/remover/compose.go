package remover

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ivlev/bgremover/internal/segment"
)

// Compose writes img's colour with alpha taken from mask into dst. All
// three must share the same size; every pixel of dst is overwritten.
func Compose(dst, img *image.NRGBA, mask *segment.Mask) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if mask.Width != w || mask.Height != h {
		return fmt.Errorf("mask is %dx%d, image is %dx%d", mask.Width, mask.Height, w, h)
	}
	if dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		return fmt.Errorf("canvas is %v, image is %dx%d", dst.Bounds().Size(), w, h)
	}

	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			out[i] = src[i]
			out[i+1] = src[i+1]
			out[i+2] = src[i+2]
			out[i+3] = mask.Alpha(x, y)
		}
	}
	return nil
}

// WritePNG encodes img to path through a temporary file in the same
// directory, replacing any existing file only once encoding succeeded.
func WritePNG(path string, img image.Image) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = png.Encode(tmp, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
