package analyzer

import (
	"image"
	"math"
)

// ThresholdDetector treats every pixel darker than Threshold as part of the
// object, which suits objects photographed against a light backdrop.
type ThresholdDetector struct {
	Threshold uint8   // Pixels with intensity < Threshold are foreground
	Padding   float64 // Fraction of the box size added on every side
}

// NewThresholdDetector creates a detector with the default settings
func NewThresholdDetector() *ThresholdDetector {
	return &ThresholdDetector{
		Threshold: 127,
		Padding:   0.03,
	}
}

// Detect returns the padded bounding box of all dark pixels, clamped to the
// image.
func (d *ThresholdDetector) Detect(gray *image.Gray) (image.Rectangle, bool) {
	tight, ok := DarkBounds(gray, d.Threshold)
	if !ok {
		return image.Rectangle{}, false
	}
	return Pad(tight, d.Padding, gray.Bounds()), true
}

// Grayscale converts img using the BT.601 luma weights in the same 14-bit
// fixed point form OpenCV uses, so thresholds carry over from OpenCV
// tooling. Alpha is ignored.
func Grayscale(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			r, g, bl := uint32(src[x*4]), uint32(src[x*4+1]), uint32(src[x*4+2])
			dst[x] = uint8((r*4899 + g*9617 + bl*1868 + 8192) >> 14)
		}
	}

	return gray
}

// DarkBounds returns the smallest rectangle containing every pixel with
// intensity below threshold. Min and max are tracked independently on
// both axes, so a single qualifying pixel yields a 1x1 box.
func DarkBounds(gray *image.Gray, threshold uint8) (image.Rectangle, bool) {
	b := gray.Bounds()
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := -1, -1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[x-b.Min.X] >= threshold {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Pad grows r by ratio of its own width and height on each side, rounding
// the margin up, then clamps it to bounds.
func Pad(r image.Rectangle, ratio float64, bounds image.Rectangle) image.Rectangle {
	padX := int(math.Ceil(float64(r.Dx()) * ratio))
	padY := int(math.Ceil(float64(r.Dy()) * ratio))

	padded := image.Rect(r.Min.X-padX, r.Min.Y-padY, r.Max.X+padX, r.Max.Y+padY)
	return padded.Intersect(bounds)
}
