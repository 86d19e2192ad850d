// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/measurestat/measurestat/analysis"
	"github.com/measurestat/measurestat/internal/golden"
	"github.com/measurestat/measurestat/measure"
)

func TestEvents(t *testing.T) {
	checkGolden(t, "events", nil, "events.csv")
	checkGolden(t, "events", map[string]string{"FILE": "events.csv"})
	// The argument takes precedence over $FILE.
	checkGolden(t, "events", map[string]string{"FILE": "missing.csv"}, "events.csv")
}

func TestCSV(t *testing.T) {
	checkGolden(t, "datapointsCSV", nil, "-format", "csv", "-schema", "datapoints", "datapoints.csv")
	checkGolden(t, "datapointsCSV", map[string]string{"SCHEMA": "b"}, "-format", "csv", "datapoints.csv")
	checkGolden(t, "costsCSV", nil, "-format", "csv", "-schema", "costs", "costs.csv")
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	var got, gotErr bytes.Buffer
	args := []string{"-format", "csv", "-plot", "-images", dir, filepath.Join("testdata", "datapoints.csv")}
	if err := measurestat(&got, &gotErr, args, env(map[string]string{"SCHEMA": "datapoints"})); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", "datapointsCSV.stdout"))
	if err != nil {
		t.Fatal(err)
	}
	if d := golden.Diff(want, got.Bytes()); d != "" {
		t.Errorf("report mismatch:\n%s", d)
	}
	for _, name := range []string{"V8.Execute", "Blink.Layout"} {
		f, err := os.Open(filepath.Join(dir, name+".png"))
		if err != nil {
			t.Errorf("missing histogram: %v", err)
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if !hasBars(img) {
			t.Errorf("%s: histogram has no bars", name)
		}
	}
	if !strings.Contains(gotErr.String(), "wrote histograms") {
		t.Errorf("stderr does not report histograms:\n%s", gotErr.String())
	}
}

// hasBars reports whether img has any pixel in the blue hue of
// histogram bars.
func hasBars(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, bl, _ := img.At(x, y).RGBA()
			if bl > r+0x3000 {
				return true
			}
		}
	}
	return false
}

func TestErrors(t *testing.T) {
	run := func(vars map[string]string, args ...string) (string, error) {
		t.Helper()
		var got, gotErr bytes.Buffer
		err := measurestat(&got, &gotErr, args, env(vars))
		if got.Len() != 0 {
			t.Errorf("%v: wrote partial output %q", args, got.String())
		}
		return gotErr.String(), err
	}

	if _, err := run(nil); !errors.Is(err, analysis.ErrNoFile) {
		t.Errorf("no file: got %v, want ErrNoFile", err)
	}
	var se *measure.SyntaxError
	if _, err := run(nil, filepath.Join("testdata", "bad.csv")); !errors.As(err, &se) {
		t.Errorf("bad.csv: got %v, want *measure.SyntaxError", err)
	} else if se.Line != 1 {
		t.Errorf("bad.csv: error at line %d, want 1", se.Line)
	}
	if stderr, err := run(nil, "a.csv", "b.csv"); !errors.Is(err, errUsage) {
		t.Errorf("two files: got %v, want errUsage", err)
	} else if !strings.Contains(stderr, "usage:") {
		t.Errorf("two files: no usage message in %q", stderr)
	}
	if _, err := run(nil, "-bogus", "a.csv"); !errors.Is(err, errUsage) {
		t.Errorf("unknown flag: got %v, want errUsage", err)
	}
	if _, err := run(nil, "-format", "json", filepath.Join("testdata", "events.csv")); err == nil {
		t.Errorf("unknown format: want error")
	}
	if _, err := run(nil, "-schema", "d", filepath.Join("testdata", "events.csv")); err == nil {
		t.Errorf("unknown schema: want error")
	}
	if _, err := run(map[string]string{"REDUCE_DATA_BY_STD": "x"}, filepath.Join("testdata", "events.csv")); err == nil {
		t.Errorf("bad REDUCE_DATA_BY_STD: want error")
	}
}

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func checkGolden(t *testing.T, name string, vars map[string]string, args ...string) {
	t.Helper()
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir("..")

	// Get the measurestat output.
	var got, gotErr bytes.Buffer
	t.Logf("measurestat %s", strings.Join(args, " "))
	if err := measurestat(&got, &gotErr, args, env(vars)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// Compare to the golden output.
	golden.Compare(t, name, "stdout", got.Bytes())
	golden.Compare(t, name, "stderr", gotErr.Bytes())
}
