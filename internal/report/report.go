package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/bgremover/internal/remover"
	"gopkg.in/yaml.v3"
)

// Report is the YAML record of one batch run.
type Report struct {
	Version   string  `yaml:"version"`
	Generated string  `yaml:"generated"`
	Elapsed   float64 `yaml:"elapsed_seconds"`
	Total     int     `yaml:"total"`
	Processed int     `yaml:"processed"`
	Skipped   int     `yaml:"skipped"`
	Failed    int     `yaml:"failed"`
	Images    []Image `yaml:"images"`
}

type Image struct {
	Input    string  `yaml:"input"`
	Output   string  `yaml:"output,omitempty"`
	Status   string  `yaml:"status"`
	Reason   string  `yaml:"reason,omitempty"`
	Box      *Box    `yaml:"box,omitempty"`
	Duration float64 `yaml:"duration_seconds"`
}

// Box is the seed rectangle, as x0,y0 (inclusive) and x1,y1 (exclusive).
type Box struct {
	X0 int `yaml:"x0"`
	Y0 int `yaml:"y0"`
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
}

func New(version string, results []remover.Result, elapsed time.Duration) *Report {
	rep := &Report{
		Version:   version,
		Generated: time.Now().Format(time.RFC3339),
		Elapsed:   elapsed.Seconds(),
		Total:     len(results),
	}

	for _, r := range results {
		switch r.Status {
		case remover.StatusOK:
			rep.Processed++
		case remover.StatusSkipped:
			rep.Skipped++
		default:
			rep.Failed++
		}

		img := Image{
			Input:    filepath.Base(r.Input),
			Output:   r.Output,
			Status:   string(r.Status),
			Reason:   r.Reason,
			Duration: r.Duration.Seconds(),
		}
		if !r.Box.Empty() {
			img.Box = &Box{X0: r.Box.Min.X, Y0: r.Box.Min.Y, X1: r.Box.Max.X, Y1: r.Box.Max.Y}
		}
		rep.Images = append(rep.Images, img)
	}

	return rep
}

// Write stores rep as YAML at path, creating the parent directory. The
// file is replaced only once the whole report has been encoded.
func Write(rep *Report, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err = enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err = enc.Close(); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
