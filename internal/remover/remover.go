package remover

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/ivlev/bgremover/internal/analyzer"
	"github.com/ivlev/bgremover/internal/segment"
	"github.com/ivlev/bgremover/internal/source"
	"github.com/ivlev/bgremover/internal/system"
	"go.uber.org/zap"
)

// MinSeedSamples is the number of pixels GrabCut needs on each side of the
// seed rectangle: it fits a 5-component colour model to the foreground and
// another to the background.
const MinSeedSamples = 5

var (
	ErrEmptySeed       = errors.New("seed rectangle is empty")
	ErrSeedTooSmall    = errors.New("seed rectangle holds too few pixels to model the foreground")
	ErrSeedCoversImage = errors.New("seed rectangle covers the whole image, no background to learn from")
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome of one image. Output is set only for StatusOK.
type Result struct {
	Input    string
	Output   string
	Status   Status
	Reason   string
	Box      image.Rectangle
	Duration time.Duration
}

// Remover turns one photograph into a transparent PNG.
type Remover struct {
	OutputDir  string
	Detector   analyzer.Detector
	Segmenter  segment.Segmenter
	Iterations int
	log        *zap.Logger
}

func New(outputDir string, det analyzer.Detector, seg segment.Segmenter, iterations int, log *zap.Logger) *Remover {
	return &Remover{
		OutputDir:  outputDir,
		Detector:   det,
		Segmenter:  seg,
		Iterations: iterations,
		log:        log,
	}
}

// Process handles a single input file. Failures are reported in the
// returned Result and logged once; Process never panics.
func (r *Remover) Process(ctx context.Context, inputPath string) (res Result) {
	start := time.Now()
	name := filepath.Base(inputPath)
	res = Result{Input: inputPath}

	defer func() {
		if p := recover(); p != nil {
			res.Status = StatusFailed
			res.Output = ""
			res.Reason = fmt.Sprintf("panic: %v", p)
			r.log.Error("error processing image", zap.String("file", name), zap.String("error", res.Reason))
		}
		res.Duration = time.Since(start)
	}()

	img, err := source.Load(inputPath)
	if err != nil {
		r.log.Warn("skipping image (unable to read)", zap.String("file", name), zap.Error(err))
		res.Status = StatusSkipped
		res.Reason = err.Error()
		return res
	}

	box, ok := r.Detector.Detect(analyzer.Grayscale(img))
	if !ok {
		r.log.Warn("skipping image (no foreground found)", zap.String("file", name))
		res.Status = StatusSkipped
		res.Reason = "no pixel below threshold"
		return res
	}
	res.Box = box

	outPath := source.OutputPath(r.OutputDir, inputPath)
	if err := r.remove(ctx, img, box, outPath); err != nil {
		r.log.Error("error processing image", zap.String("file", name), zap.Error(err))
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	res.Status = StatusOK
	res.Output = outPath
	r.log.Debug("image processed",
		zap.String("file", name),
		zap.Stringer("box", box),
		zap.Duration("duration", time.Since(start)))
	return res
}

func (r *Remover) remove(ctx context.Context, img *image.NRGBA, box image.Rectangle, outPath string) error {
	if err := ValidateSeed(box, img.Bounds()); err != nil {
		return err
	}

	mask, err := r.Segmenter.Segment(ctx, img, box, r.Iterations)
	if err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}

	out := system.GetImage(img.Bounds())
	defer system.PutImage(out)

	if err := Compose(out, img, mask); err != nil {
		return err
	}
	return WritePNG(outPath, out)
}

// ValidateSeed rejects rectangles GrabCut cannot be initialised with. Both
// the inside of rect and the rest of bounds need MinSeedSamples pixels.
func ValidateSeed(rect, bounds image.Rectangle) error {
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return ErrEmptySeed
	}
	inside := rect.Dx() * rect.Dy()
	if inside < MinSeedSamples {
		return ErrSeedTooSmall
	}
	if bounds.Dx()*bounds.Dy()-inside < MinSeedSamples {
		return ErrSeedCoversImage
	}
	return nil
}
