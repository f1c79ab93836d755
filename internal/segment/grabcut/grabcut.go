// Package grabcut implements segment.Segmenter with OpenCV's GrabCut via gocv.
package grabcut

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/ivlev/bgremover/internal/segment"
	"gocv.io/x/gocv"
)

type Segmenter struct{}

func New() *Segmenter {
	return &Segmenter{}
}

// Segment runs GrabCut initialised with rect. rect is relative to the
// image's top-left corner. OpenCV exceptions, such as a seed with too few
// pixels on either side, come back as errors.
func (s *Segmenter) Segment(ctx context.Context, img *image.NRGBA, rect image.Rectangle, iterations int) (*segment.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bgr := toBGR(img)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	src, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer src.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	err = gocv.GrabCut(src, &mask, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)
	// the Mat borrows bgr's memory
	runtime.KeepAlive(bgr)
	if err != nil {
		return nil, fmt.Errorf("grabcut: %w", err)
	}

	if mask.Empty() || mask.Cols() != width || mask.Rows() != height {
		return nil, fmt.Errorf("grabcut returned a %dx%d mask for a %dx%d image", mask.Cols(), mask.Rows(), width, height)
	}

	data := mask.ToBytes()
	if len(data) != width*height {
		return nil, fmt.Errorf("grabcut mask has %d bytes, want %d", len(data), width*height)
	}

	out := segment.NewMask(width, height)
	for i, v := range data {
		out.Labels[i] = segment.Label(v)
	}
	return out, nil
}

// toBGR packs img's colour channels in OpenCV's byte order and drops alpha,
// so the segmenter sees the same colours the threshold step does.
func toBGR(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = row[x*4+2]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4]
		}
	}
	return out
}
