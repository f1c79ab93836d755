package config

import (
	"flag"
	"fmt"
	"io"
)

// FromArgs builds the configuration from defaults, an optional -config
// YAML file and the command line, in increasing order of precedence.
func FromArgs(args []string, defaultWorkers int, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("bgremover", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: bgremover --input <dir> --output <dir> [-j N] [options]\n\n")
		fs.PrintDefaults()
	}

	def := Default(defaultWorkers)

	inputPtr := fs.String("input", "", "Directory with source photographs (.jpg, .jpeg, .png)")
	outputPtr := fs.String("output", "", "Directory for transparent PNGs (created if missing)")
	workersPtr := fs.Int("j", def.Workers, "Maximum number of images processed at once")
	configPtr := fs.String("config", "", "YAML config file")
	thresholdPtr := fs.Int("threshold", def.Threshold, "Pixels darker than this (0-255) seed the object box")
	paddingPtr := fs.Float64("padding", def.Padding, "Box padding as a fraction of its size")
	iterationsPtr := fs.Int("iterations", def.Iterations, "GrabCut iterations")
	reportPtr := fs.String("report", "", "Write a YAML run report to this file")
	logModePtr := fs.String("log-mode", def.LogMode, "Log format: dev (readable lines) or release (JSON)")
	quietPtr := fs.Bool("quiet", false, "Hide the progress bar")
	versionPtr := fs.Bool("version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := def
	cfg.ShowVersion = *versionPtr
	if cfg.ShowVersion {
		return cfg, nil
	}

	if *configPtr != "" {
		if err := LoadFile(cfg, *configPtr); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "j":
			cfg.Workers = *workersPtr
		case "threshold":
			cfg.Threshold = *thresholdPtr
		case "padding":
			cfg.Padding = *paddingPtr
		case "iterations":
			cfg.Iterations = *iterationsPtr
		case "report":
			cfg.ReportPath = *reportPtr
		case "log-mode":
			cfg.LogMode = *logModePtr
		case "quiet":
			cfg.Quiet = *quietPtr
		}
	})

	if err := cfg.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return cfg, nil
}
