package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ivlev/bgremover/internal/config"
	"github.com/ivlev/bgremover/internal/remover"
	"github.com/ivlev/bgremover/internal/report"
	"github.com/ivlev/bgremover/internal/source"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Processor handles one image. remover.Remover is the production
// implementation.
type Processor interface {
	Process(ctx context.Context, inputPath string) remover.Result
}

type Batch struct {
	Config    *config.Config
	Source    *source.ImageSource
	Processor Processor
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	log      *zap.Logger
}

func NewBatch(cfg *config.Config, src *source.ImageSource, proc Processor, log *zap.Logger) *Batch {
	return &Batch{
		Config:    cfg,
		Source:    src,
		Processor: proc,
		log:       log,
	}
}

type Summary struct {
	Results   []remover.Result
	Processed int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Run processes every image of the source with at most Config.Workers
// running at once. Per-image failures end up in the Summary, not in the
// returned error, which only reports problems with the output directory
// or the report file.
func (b *Batch) Run(ctx context.Context) (*Summary, error) {
	startTime := time.Now()

	if err := os.MkdirAll(b.Config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if b.Source.Count() == 0 {
		b.log.Warn("no valid image files found", zap.String("dir", b.Source.Dir()))
		return &Summary{Elapsed: time.Since(startTime)}, nil
	}

	for out, inputs := range b.Source.Collisions(b.Config.OutputDir) {
		b.log.Warn("several inputs share one output file, the last one written wins",
			zap.String("output", out), zap.Strings("inputs", inputs))
	}

	paths := b.Source.Paths()
	numWorkers := b.Config.Workers
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	b.log.Info("processing images",
		zap.String("input", b.Source.Dir()),
		zap.String("output", b.Config.OutputDir),
		zap.Int("images", len(paths)),
		zap.Int("workers", numWorkers))

	bar := b.newProgressBar(len(paths))
	results := make([]remover.Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = b.Processor.Process(gctx, path)
			_ = bar.Add(1)
			return nil
		})
	}
	// workers never return errors
	_ = g.Wait()
	_ = bar.Finish()

	summary := summarize(results)
	summary.Elapsed = time.Since(startTime)

	b.log.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))

	if b.Config.ReportPath != "" {
		rep := report.New(b.Config.BuildVersion, summary.Results, summary.Elapsed)
		if err := report.Write(rep, b.Config.ReportPath); err != nil {
			return summary, fmt.Errorf("write report: %w", err)
		}
		b.log.Info("report written", zap.String("path", b.Config.ReportPath))
	}

	return summary, nil
}

func (b *Batch) newProgressBar(total int) *progressbar.ProgressBar {
	w := b.Progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Processing images"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

func summarize(results []remover.Result) *Summary {
	s := &Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case remover.StatusOK:
			s.Processed++
		case remover.StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
