package analyzer

import "image"

// Detector locates the region of a photograph that holds the object.
// ok is false when nothing in the image qualifies.
type Detector interface {
	Detect(gray *image.Gray) (box image.Rectangle, ok bool)
}
