// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Timeline derives measurement rows from telemetry zone dumps.
//
// Usage:
//
//	timeline -track-file tracks.csv -zone-file zones.csv -query-file queries.json
//
// The track file holds TM_TRACK rows and the zone file holds TM_ZONE
// rows of a telemetry CSV dump; other rows are ignored. Zones on
// tracks missing from the track file are dropped, and the -track flag
// further restricts the zones to a single named track.
//
// The query file is a JSON object:
//
//	{
//		"ignores": ["V8TracingController.AddTraceEvent"],
//		"queries": [
//			{"type": "SelfTime", "node": "V8.Execute", "partial_ignore": ["V8.GC"]},
//			{"type": "Stat", "node": "Blink.Layout"},
//			{"type": "Reduce", "node": "V8.Execute", "ignore_count": 3},
//			{"type": "Cost", "node": "DataBufferBridge.getUint8"}
//		]
//	}
//
// Each query prints one CSV row per zone named by node. SelfTime
// prints datapoints rows with the zone's duration less the time spent
// in contained zones named by ignores and in partially overlapping
// zones named by partial_ignore. Stat prints the name, duration,
// start, and end of each zone. Reduce prints the input rows of the
// ignore_count'th zone and of every zone that overlaps it. Cost prints
// costs rows splitting native calls made from JavaScript into binding
// overhead, argument conversion, and native self time.
//
// With -header, each query's rows are preceded by a header row, so
// the output of a single SelfTime or Cost query can be read by
// measurestat in tabular mode.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/measurestat/measurestat/internal/logging"
	"github.com/measurestat/measurestat/timeline"
)

var errUsage = errors.New("usage error")

func main() {
	log.SetPrefix("timeline: ")
	log.SetFlags(0)
	if err := timelineMain(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Print(err)
		os.Exit(1)
	}
}

func timelineMain(stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("timeline", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: timeline [flags]\n")
		flags.PrintDefaults()
	}
	trackFile := flags.String("track-file", "", "read TM_TRACK rows from `file` (required)")
	zoneFile := flags.String("zone-file", "", "read TM_ZONE rows from `file` (required)")
	queryFile := flags.String("query-file", "", "read JSON queries from `file` (required)")
	track := flags.String("track", "", "only query zones on the track named `name`")
	header := flags.Bool("header", false, "print a header row before each query's rows")
	verbose := flags.Bool("v", false, "log progress to stderr")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if flags.NArg() > 0 || *trackFile == "" || *zoneFile == "" || *queryFile == "" {
		flags.Usage()
		return errUsage
	}

	logger := logging.New(stderr, *verbose)
	defer logger.Sync()

	cfg, err := readConfig(*queryFile)
	if err != nil {
		return err
	}
	tracks, err := readTracks(*trackFile)
	if err != nil {
		return err
	}
	tracks = timeline.SelectTracks(tracks, *track)
	if len(tracks) == 0 {
		return fmt.Errorf("%s: no track named %q", *trackFile, *track)
	}
	zones, err := readZones(*zoneFile, tracks)
	if err != nil {
		return err
	}
	logger.Debug("read zones", zap.Int("tracks", len(tracks)), zap.Int("zones", len(zones)))

	return cfg.Run(timeline.New(zones), stdout, *header, logger)
}

func readConfig(path string) (*timeline.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := timeline.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func readTracks(path string) ([]timeline.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return timeline.ReadTracks(f, path)
}

func readZones(path string, tracks []timeline.Track) ([]timeline.Zone, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return timeline.ReadZones(f, path, tracks)
}
