// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Measurestat summarizes CSV measurement logs.
//
// Usage:
//
//	measurestat [flags] [file]
//
// The input file is named by the FILE environment variable, or by the
// single argument, which takes precedence. Each row of the file is one
// measurement. By default, rows are read in raw mode as the "events"
// schema:
//
//	measurement_type,name,duration
//
// Rows with two or fewer fields are ignored and the duration must be
// an integer. The -schema flag selects one of the other schemas:
//
//	datapoints  measurement_type,name,duration,additional_data
//	costs       name,cost_of_javascript,cost_of_impl,cost_of_cpp
//
// These are read in tabular mode by default, where the first row is a
// header and every row must have the same number of fields. The -mode
// flag overrides the loader mode.
//
// Measurestat groups rows by measurement type and name (by name for
// costs) and prints the count, mean, standard deviation, minimum,
// quartiles, and maximum of every numeric column in each group, in
// key order.
//
// If the -plot flag is given or PLOT_HISTOGRAMS is non-empty,
// measurestat also writes a 200-bin histogram of the durations of
// each name to <dir>/<name>.png, where dir is given by -images or
// IMAGE_DIR and defaults to ./images. The directory must exist. If
// REDUCE_DATA_BY_STD is set to an integer k, each histogram only
// includes durations at most k standard deviations above the mean
// for that name. REDUCE_DATA_BY_STD is checked even when histograms
// are off, so a value that is not an integer is always an error.
//
// The -format flag selects text (the default), csv, or html output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/measurestat/measurestat/analysis"
	"github.com/measurestat/measurestat/describe"
	"github.com/measurestat/measurestat/internal/logging"
	"github.com/measurestat/measurestat/measure"
)

// errUsage reports a command line the flag package already complained
// about.
var errUsage = errors.New("usage error")

func main() {
	log.SetPrefix("measurestat: ")
	log.SetFlags(0)
	if err := measurestat(os.Stdout, os.Stderr, os.Args[1:], os.Getenv); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Print(err)
		os.Exit(1)
	}
}

func measurestat(stdout, stderr io.Writer, args []string, getenv func(string) string) error {
	flags := flag.NewFlagSet("measurestat", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: measurestat [flags] [file]\n")
		fmt.Fprintf(flags.Output(), "The input file may also be named by $%s.\n", analysis.EnvFile)
		fmt.Fprintf(flags.Output(), "flags:\n")
		flags.PrintDefaults()
	}
	flagSchema := flags.String("schema", "", "column `schema`: events, datapoints, or costs (default events, or $SCHEMA)")
	flagMode := flags.String("mode", "", "loader `mode`: raw or tabular (default depends on -schema)")
	flagFormat := flags.String("format", "text", "print results in `format`:\n  text - plain text\n  csv  - comma-separated values\n  html - HTML table")
	flagPlot := flags.Bool("plot", false, "write a duration histogram per name (also enabled by $PLOT_HISTOGRAMS)")
	flagImages := flags.String("images", "", "write histograms to `dir` (default ./images, or $IMAGE_DIR)")
	flagVerbose := flags.Bool("v", false, "log progress to stderr")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return errUsage
	}

	env := getenv
	if flags.NArg() == 1 {
		file := flags.Arg(0)
		env = func(key string) string {
			if key == analysis.EnvFile {
				return file
			}
			return getenv(key)
		}
	}
	cfg, err := analysis.ConfigFromEnv(env)
	if err != nil {
		return err
	}

	if *flagSchema != "" {
		schema, err := measure.LookupSchema(*flagSchema)
		if err != nil {
			return err
		}
		cfg.Schema = schema
		if getenv(analysis.EnvMode) == "" {
			cfg.Mode = schema.Mode
		}
	}
	if *flagMode != "" {
		if cfg.Mode, err = measure.ParseMode(*flagMode); err != nil {
			return err
		}
	}
	if cfg.Format, err = describe.ParseFormat(*flagFormat); err != nil {
		return err
	}
	if *flagPlot {
		cfg.Plot = true
	}
	if *flagImages != "" {
		cfg.ImageDir = *flagImages
	}

	cfg.Logger = logging.New(stderr, *flagVerbose)
	defer cfg.Logger.Sync()
	return analysis.Run(cfg, stdout)
}
