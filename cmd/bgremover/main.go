package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ivlev/bgremover/internal/analyzer"
	"github.com/ivlev/bgremover/internal/config"
	"github.com/ivlev/bgremover/internal/engine"
	"github.com/ivlev/bgremover/internal/logging"
	"github.com/ivlev/bgremover/internal/remover"
	"github.com/ivlev/bgremover/internal/segment/grabcut"
	"github.com/ivlev/bgremover/internal/source"
	"github.com/ivlev/bgremover/internal/system"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code: 0 once the batch ran (whatever happened
// to individual images), 2 for usage errors, 1 when the directories or the
// report cannot be used.
func run(args []string) int {
	cfg, err := config.FromArgs(args, system.CPUCount(), os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		return 2
	}
	if cfg.ShowVersion {
		fmt.Println("bgremover", Version)
		return 0
	}
	cfg.BuildVersion = Version

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	// each worker holds an input and a temp output file open
	system.RaiseFileLimit(log, uint64(2*cfg.Workers+64))
	system.LogHostInfo(log, cfg.Workers)

	src, err := source.NewImageSource(cfg.InputDir)
	if err != nil {
		log.Error("cannot list input directory", zap.String("dir", cfg.InputDir), zap.Error(err))
		return 1
	}

	detector := &analyzer.ThresholdDetector{
		Threshold: uint8(cfg.Threshold),
		Padding:   cfg.Padding,
	}
	rem := remover.New(cfg.OutputDir, detector, grabcut.New(), cfg.Iterations, log)

	batch := engine.NewBatch(cfg, src, rem, log)
	if !cfg.Quiet {
		batch.Progress = os.Stderr
	}

	if _, err := batch.Run(context.Background()); err != nil {
		log.Error("batch aborted", zap.Error(err))
		return 1
	}
	return 0
}
