// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package histogram renders per-name duration histograms of a
// measurement table to PNG files.
package histogram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"reflect"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// NameColumn is the column histograms are split by.
	NameColumn = "name"
	// ValueColumn is the column histograms are drawn from.
	ValueColumn = "duration"

	// DefaultDir is where images are written if Options.Dir is
	// empty.
	DefaultDir = "images"
	// DefaultBins is the number of bins if Options.Bins is zero.
	DefaultBins = 200
)

// Options configures Render.
type Options struct {
	// Dir is the directory images are written to. It must exist.
	Dir string

	// Bins is the number of equal-width bins per histogram.
	Bins int

	// Reduce enables the outlier filter. If set, only values at
	// most StdDevs sample standard deviations above the mean of
	// their name are plotted.
	Reduce  bool
	StdDevs int

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Render writes one histogram of ValueColumn per distinct value of
// NameColumn in t, in order of first occurrence. Each image is titled
// with the name and written to "<Dir>/<name>.png". The name is used
// verbatim, so names containing path separators write outside Dir.
//
// Render returns the paths it wrote. It stops at the first error,
// including a missing Dir.
func Render(t *table.Table, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	names := t.Column(NameColumn)
	if names == nil {
		return nil, fmt.Errorf("table has no %q column", NameColumn)
	}
	if t.Column(ValueColumn) == nil {
		return nil, fmt.Errorf("table has no %q column", ValueColumn)
	}

	var paths []string
	distinct := reflect.ValueOf(slice.Nub(names))
	for i := 0; i < distinct.Len(); i++ {
		name := distinct.Index(i).Interface()
		bs, rows, plotted := bins(t, name, opts)
		label := fmt.Sprint(name)
		path := opts.Dir + string(filepath.Separator) + label + ".png"
		if err := Save(path, label, bs); err != nil {
			return paths, err
		}
		opts.Logger.Debug("wrote histogram",
			zap.String("name", label),
			zap.Int("rows", rows),
			zap.Int("plotted", plotted),
			zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// bins returns the histogram of the ValueColumn values of the rows of t
// named name, with the number of rows named name and the number left
// after the outlier filter.
func bins(t *table.Table, name interface{}, opts Options) (bs []plotter.HistogramBin, rows, plotted int) {
	sub := table.Flatten(table.FilterEq(t, NameColumn, name))
	rows = sub.Len()
	if opts.Reduce {
		sub = ReduceByStdDev(sub, ValueColumn, opts.StdDevs)
	}
	var xs []float64
	slice.Convert(&xs, sub.MustColumn(ValueColumn))
	return Buckets(xs, opts.Bins), rows, len(xs)
}

// ReduceByStdDev returns the rows of t whose col value is at most
// k sample standard deviations above the mean of col. The filter is
// one-sided: low values are never removed. If the standard deviation
// is undefined (fewer than two rows), no rows are kept.
func ReduceByStdDev(t *table.Table, col string, k int) *table.Table {
	var xs []float64
	slice.Convert(&xs, t.MustColumn(col))
	mean, std := stat.MeanStdDev(xs, nil)
	limit := mean + float64(k)*std

	t = table.NewBuilder(t).Add(col, xs).Done()
	return table.Flatten(table.Filter(t, func(x float64) bool {
		return x <= limit
	}, col))
}

// Buckets counts xs into n equal-width bins spanning the range of xs.
// Bins are half-open except the last, which also includes the maximum.
// If every value is the same the range is widened by 0.5 on each side,
// and if xs is empty the range is [0, 1].
func Buckets(xs []float64, n int) []plotter.HistogramBin {
	lo, hi := 0.0, 1.0
	if len(xs) > 0 {
		lo, hi = stats.Bounds(xs)
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
	}
	edges := make([]float64, n+1)
	width := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[n] = hi

	bins := make([]plotter.HistogramBin, n)
	index := make(map[float64]int, n)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: edges[i], Max: edges[i+1]}
		index[edges[i]] = i
	}
	if len(xs) == 0 {
		return bins
	}

	// Bin by left edge only, so the maximum lands in the last bin.
	// Bin groups by x, which leaves x constant in each group, so the
	// rows are counted by summing a weight column of ones.
	ones := make([]float64, len(xs))
	for i := range ones {
		ones[i] = 1
	}
	in := new(table.Builder).Add("x", xs).Add("w", ones).Done()
	out := table.Flatten(ggstat.Bin{X: "x", W: "w", Breaks: edges[:n]}.F(in))
	lefts := out.MustColumn("x").([]float64)
	weights := out.MustColumn("w").([]float64)
	for i, left := range lefts {
		bins[index[left]].Weight += weights[i]
	}
	return bins
}

// Save renders bins as a histogram titled title and writes it to path
// as a PNG image.
func Save(path, title string, bins []plotter.HistogramBin) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = ValueColumn
	p.Y.Label.Text = "count"
	p.Add(plotter.NewGrid())
	h := &plotter.Histogram{
		Bins:      bins,
		FillColor: color.RGBA{R: 31, G: 119, B: 180, A: 255},
		LineStyle: plotter.DefaultLineStyle,
	}
	if len(bins) > 0 {
		h.Width = bins[0].Max - bins[0].Min
	}
	h.LineStyle.Width = vg.Points(0.5)
	p.Add(h)

	c := vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(6.4*vg.Inch, 4.8*vg.Inch),
		vgimg.UseDPI(100), vgimg.UseBackgroundColor(color.White))}
	p.Draw(draw.New(c))
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
