// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analysis runs the measurement analysis pipeline: load a
// measurement file, bind it to a schema, summarize it per group, and
// optionally render per-name histograms.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/measurestat/measurestat/describe"
	"github.com/measurestat/measurestat/histogram"
	"github.com/measurestat/measurestat/measure"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvFile   = "FILE"
	EnvReduce = "REDUCE_DATA_BY_STD"
	EnvPlot   = "PLOT_HISTOGRAMS"
	EnvSchema = "SCHEMA"
	EnvImages = "IMAGE_DIR"
	EnvMode   = "LOADER_MODE"
)

// ErrNoFile is returned by ConfigFromEnv if no input file is named.
var ErrNoFile = errors.New(EnvFile + " is not set")

// Config configures Run.
type Config struct {
	// File is the measurement file to analyze.
	File string

	// Schema names the columns of File. If nil, measure.Events is
	// used.
	Schema *measure.Schema

	// Mode is the loader mode for File.
	Mode measure.Mode

	// Plot enables histogram rendering into ImageDir (or
	// histogram.DefaultDir if empty).
	Plot     bool
	ImageDir string

	// Reduce enables the histogram outlier filter with a limit of
	// StdDevs standard deviations above the mean.
	Reduce  bool
	StdDevs int

	// Format is the output format of the summary report.
	Format describe.Format

	Logger *zap.Logger
}

// ConfigFromEnv builds a Config from environment variables, looked up
// with getenv (typically os.Getenv).
//
// FILE is required. REDUCE_DATA_BY_STD, if set, must be an integer and
// enables the outlier filter. PLOT_HISTOGRAMS, if non-empty, enables
// histograms. SCHEMA, LOADER_MODE, and IMAGE_DIR override the
// defaults of events, the schema's usual mode, and ./images.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{File: getenv(EnvFile), Schema: measure.Events}
	if cfg.File == "" {
		return Config{}, ErrNoFile
	}
	if s := getenv(EnvReduce); s != "" {
		k, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %q is not an integer", EnvReduce, s)
		}
		cfg.Reduce, cfg.StdDevs = true, k
	}
	cfg.Plot = getenv(EnvPlot) != ""
	cfg.ImageDir = getenv(EnvImages)
	if s := getenv(EnvSchema); s != "" {
		schema, err := measure.LookupSchema(s)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSchema, err)
		}
		cfg.Schema = schema
	}
	cfg.Mode = cfg.Schema.Mode
	if s := getenv(EnvMode); s != "" {
		mode, err := measure.ParseMode(s)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMode, err)
		}
		cfg.Mode = mode
	}
	return cfg, nil
}

// Run analyzes cfg.File and writes the summary report to w.
//
// Histograms, if enabled, are rendered before the report is written;
// if rendering fails, nothing is written to w. Plotting a schema
// without name and duration columns is an error.
func Run(cfg Config, w io.Writer) error {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	schema := cfg.Schema
	if schema == nil {
		schema = measure.Events
	}
	if cfg.Plot {
		for _, col := range []string{histogram.NameColumn, histogram.ValueColumn} {
			if !schema.Has(col) {
				return fmt.Errorf("rendering histograms: schema %s has no %q column", schema, col)
			}
		}
	}

	t, err := schema.Load(cfg.File, cfg.Mode)
	if err != nil {
		return err
	}
	log.Debug("loaded measurements",
		zap.String("file", cfg.File),
		zap.Stringer("schema", schema),
		zap.Stringer("mode", cfg.Mode),
		zap.Int("rows", t.Len()))

	r, err := describe.Describe(t, schema.GroupBy...)
	if err != nil {
		return err
	}
	log.Debug("summarized", zap.Int("groups", len(r.Groups)), zap.Strings("columns", r.Columns))

	if cfg.Plot {
		opts := histogram.Options{
			Dir:     cfg.ImageDir,
			Reduce:  cfg.Reduce,
			StdDevs: cfg.StdDevs,
			Logger:  log,
		}
		paths, err := histogram.Render(t, opts)
		if err != nil {
			return fmt.Errorf("rendering histograms: %w", err)
		}
		log.Info("wrote histograms", zap.Int("images", len(paths)))
	}

	return r.Write(w, cfg.Format)
}
