// Package segment describes the foreground/background segmentation step.
// The algorithm itself lives behind Segmenter; see package grabcut for the
// OpenCV-backed implementation.
package segment

import (
	"context"
	"fmt"
	"image"
)

// Label is a per-pixel classification. Values match OpenCV's GC_* constants.
type Label uint8

const (
	Background         Label = 0
	Foreground         Label = 1
	ProbableBackground Label = 2
	ProbableForeground Label = 3
)

func (l Label) IsForeground() bool {
	return l == Foreground || l == ProbableForeground
}

func (l Label) String() string {
	switch l {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	case ProbableBackground:
		return "probable-background"
	case ProbableForeground:
		return "probable-foreground"
	default:
		return fmt.Sprintf("label(%d)", uint8(l))
	}
}

// Mask holds one label per pixel, row-major.
type Mask struct {
	Width, Height int
	Labels        []Label
}

func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Labels: make([]Label, width*height)}
}

func (m *Mask) At(x, y int) Label {
	return m.Labels[y*m.Width+x]
}

func (m *Mask) Set(x, y int, l Label) {
	m.Labels[y*m.Width+x] = l
}

// Alpha maps the mask to opacity: 255 for (probable) foreground, 0 otherwise.
func (m *Mask) Alpha(x, y int) uint8 {
	if m.At(x, y).IsForeground() {
		return 255
	}
	return 0
}

// Segmenter partitions img into foreground and background, seeded with rect:
// everything outside rect is background, everything inside is initially
// probable foreground.
type Segmenter interface {
	Segment(ctx context.Context, img *image.NRGBA, rect image.Rectangle, iterations int) (*Mask, error)
}
