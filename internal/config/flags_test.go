package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromArgsDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := FromArgs([]string{"--input", "in", "--output", "out"}, 6, &out)
	require.NoError(t, err)

	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
	assert.Equal(t, DefaultPadding, cfg.Padding)
	assert.Equal(t, DefaultIterations, cfg.Iterations)
	assert.False(t, cfg.Quiet)
}

func TestFromArgsWorkers(t *testing.T) {
	cfg, err := FromArgs([]string{"-input", "in", "-output", "out", "-j", "2"}, 6, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = FromArgs([]string{"-input", "in", "-output", "out", "-j", "0"}, 6, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFromArgsMissingRequired(t *testing.T) {
	var out bytes.Buffer
	_, err := FromArgs([]string{"--input", "in"}, 1, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output is required")
	assert.Contains(t, out.String(), "Usage: bgremover")
}

func TestFromArgsFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "input: photos\noutput: cutouts\nworkers: 3\nthreshold: 100\niterations: 12\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := FromArgs([]string{"-config", path, "-threshold", "90", "-quiet"}, 8, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "photos", cfg.InputDir)
	assert.Equal(t, "cutouts", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 90, cfg.Threshold)
	assert.Equal(t, 12, cfg.Iterations)
	assert.True(t, cfg.Quiet)
}

func TestFromArgsVersion(t *testing.T) {
	cfg, err := FromArgs([]string{"-version"}, 1, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestFromArgsHelpAndJunk(t *testing.T) {
	_, err := FromArgs([]string{"-h"}, 1, &bytes.Buffer{})
	assert.True(t, errors.Is(err, flag.ErrHelp))

	_, err = FromArgs([]string{"-input", "in", "-output", "out", "extra"}, 1, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = FromArgs([]string{"-nope"}, 1, &bytes.Buffer{})
	assert.Error(t, err)
}
