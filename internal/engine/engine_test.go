package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivlev/bgremover/internal/analyzer"
	"github.com/ivlev/bgremover/internal/config"
	"github.com/ivlev/bgremover/internal/remover"
	"github.com/ivlev/bgremover/internal/report"
	"github.com/ivlev/bgremover/internal/segment"
	"github.com/ivlev/bgremover/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

// countingProcessor records how many calls overlap.
type countingProcessor struct {
	active    atomic.Int32
	maxActive atomic.Int32
	mu        sync.Mutex
	seen      []string
	fail      map[string]bool
}

func (p *countingProcessor) Process(_ context.Context, path string) remover.Result {
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		m := p.maxActive.Load()
		if n <= m || p.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)

	p.mu.Lock()
	p.seen = append(p.seen, filepath.Base(path))
	p.mu.Unlock()

	if p.fail[filepath.Base(path)] {
		return remover.Result{Input: path, Status: remover.StatusFailed, Reason: "boom"}
	}
	return remover.Result{Input: path, Status: remover.StatusOK}
}

func setup(t *testing.T, names ...string) (*config.Config, *source.ImageSource) {
	t.Helper()
	in := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(in, n), nil, 0644))
	}
	cfg := config.Default(4)
	cfg.InputDir = in
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")

	src, err := source.NewImageSource(in)
	require.NoError(t, err)
	return cfg, src
}

func TestRunRespectsWorkerCap(t *testing.T) {
	cfg, src := setup(t, "1.jpg", "2.jpg", "3.png", "4.jpeg", "5.JPG")
	cfg.Workers = 2
	proc := &countingProcessor{}

	summary, err := NewBatch(cfg, src, proc, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.LessOrEqual(t, proc.maxActive.Load(), int32(2))
	assert.GreaterOrEqual(t, proc.maxActive.Load(), int32(1))
	assert.ElementsMatch(t, []string{"1.jpg", "2.jpg", "3.png", "4.jpeg", "5.JPG"}, proc.seen)
	assert.Equal(t, 5, summary.Processed)
	require.Len(t, summary.Results, 5)
	// results keep input order regardless of completion order
	for i, r := range summary.Results {
		assert.Equal(t, src.Paths()[i], r.Input)
	}
}

func TestRunEmptyInput(t *testing.T) {
	cfg, src := setup(t, "notes.txt", "b.gif")
	core, logs := observer.New(zapcore.InfoLevel)
	proc := &countingProcessor{}

	summary, err := NewBatch(cfg, src, proc, zap.New(core)).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, summary.Results)
	assert.Empty(t, proc.seen)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.DirExists(t, cfg.OutputDir)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunAggregatesFailures(t *testing.T) {
	cfg, src := setup(t, "a.jpg", "b.jpg", "c.jpg")
	cfg.ReportPath = filepath.Join(t.TempDir(), "report.yaml")
	proc := &countingProcessor{fail: map[string]bool{"b.jpg": true}}

	summary, err := NewBatch(cfg, src, proc, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, proc.seen, 3)

	data, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, yaml.Unmarshal(data, &rep))
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 1, rep.Failed)
}

func TestRunWarnsOnCollisions(t *testing.T) {
	cfg, src := setup(t, "a.jpg", "a.png")
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := NewBatch(cfg, src, &countingProcessor{}, zap.New(core)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestRunProgressBar(t *testing.T) {
	cfg, src := setup(t, "a.jpg", "b.jpg")
	var buf bytes.Buffer
	b := NewBatch(cfg, src, &countingProcessor{}, zap.NewNop())
	b.Progress = &buf

	_, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Processing images")
}

// rectSegmenter marks the seed rectangle as foreground.
type rectSegmenter struct{}

func (rectSegmenter) Segment(_ context.Context, img *image.NRGBA, rect image.Rectangle, _ int) (*segment.Mask, error) {
	m := segment.NewMask(img.Bounds().Dx(), img.Bounds().Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			m.Set(x, y, segment.ProbableForeground)
		}
	}
	return m, nil
}

func writeObject(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 240
	}
	for y := 4; y < 10; y++ {
		for x := 4; x < 10; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestRunContinuesPastCorruptFile(t *testing.T) {
	cfg, _ := setup(t, "broken.png")
	writeObject(t, filepath.Join(cfg.InputDir, "one.png"))
	writeObject(t, filepath.Join(cfg.InputDir, "two.jpg"))
	src, err := source.NewImageSource(cfg.InputDir)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	rem := remover.New(cfg.OutputDir, analyzer.NewThresholdDetector(), rectSegmenter{}, cfg.Iterations, log)

	summary, err := NewBatch(cfg, src, rem, log).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "one.png"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "two.png"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "broken.png"))
}
