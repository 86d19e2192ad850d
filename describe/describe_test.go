// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package describe

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"
)

func events(types, names []string, durations []int) *table.Table {
	return new(table.Builder).
		Add("measurement_type", types).
		Add("name", names).
		Add("duration", durations).
		Done()
}

// keyString joins the key of g so that string order matches key order.
func keyString(g *Group) string {
	parts := make([]string, len(g.Key))
	for i, k := range g.Key {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, "\x00")
}

func TestSummarize(t *testing.T) {
	nan := math.NaN()
	check := func(xs []float64, want Summary) {
		t.Helper()
		got := Summarize(xs)
		if !cmp.Equal(got, want, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-12)) {
			t.Errorf("Summarize(%v):\n got %+v\nwant %+v", xs, got, want)
		}
	}

	check(nil, Summary{0, nan, nan, nan, nan, nan, nan, nan})
	check([]float64{5}, Summary{Count: 1, Mean: 5, StdDev: nan, Min: 5, Q1: 5, Median: 5, Q3: 5, Max: 5})
	check([]float64{20, 10}, Summary{Count: 2, Mean: 15, StdDev: math.Sqrt(50), Min: 10, Q1: 12.5, Median: 15, Q3: 17.5, Max: 20})
	check([]float64{4, 1, 3, 2}, Summary{Count: 4, Mean: 2.5, StdDev: math.Sqrt(5.0 / 3), Min: 1, Q1: 1.75, Median: 2.5, Q3: 3.25, Max: 4})
	check([]float64{1, 2, 3, 4, 5}, Summary{Count: 5, Mean: 3, StdDev: math.Sqrt(2.5), Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5})

	// NaN values are skipped.
	check([]float64{nan, 10, nan, 20}, Summary{Count: 2, Mean: 15, StdDev: math.Sqrt(50), Min: 10, Q1: 12.5, Median: 15, Q3: 17.5, Max: 20})
	check([]float64{nan}, Summary{0, nan, nan, nan, nan, nan, nan, nan})

	xs := []float64{3, nan, 1, 2}
	Summarize(xs)
	if !cmp.Equal(xs, []float64{3, nan, 1, 2}, cmpopts.EquateNaNs()) {
		t.Errorf("Summarize modified its input: %v", xs)
	}
}

func TestDescribe(t *testing.T) {
	tab := events(
		[]string{"A", "A", "B"},
		[]string{"n1", "n1", "n2"},
		[]int{10, 20, 5},
	)
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Groups) != 2 {
		t.Fatalf("want 2 groups, got %d", len(r.Groups))
	}
	check := func(g *Group, key []interface{}, count int, mean float64) {
		t.Helper()
		if !cmp.Equal(g.Key, key) {
			t.Errorf("key: got %v, want %v", g.Key, key)
		}
		if s := g.Summaries[0]; s.Count != count || s.Mean != mean {
			t.Errorf("%v: got count=%d mean=%v, want count=%d mean=%v", key, s.Count, s.Mean, count, mean)
		}
	}
	check(r.Groups[0], []interface{}{"A", "n1"}, 2, 15)
	check(r.Groups[1], []interface{}{"B", "n2"}, 1, 5)

	want := []string{"measurement_type", "name"}
	for _, stat := range StatNames {
		want = append(want, "duration "+stat)
	}
	if diff := cmp.Diff(want, r.Table.Columns()); diff != "" {
		t.Errorf("report columns (-want +got):\n%s", diff)
	}
}

func TestDescribeOrder(t *testing.T) {
	// The second key is already sorted on its own, which must not
	// stop the rows from being ordered by the first key.
	tab := events(
		[]string{"b", "a", "b", "a"},
		[]string{"x", "x", "y", "y"},
		[]int{1, 2, 3, 4},
	)
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, g := range r.Groups {
		got = append(got, keyString(g))
	}
	want := []string{"a\x00x", "a\x00y", "b\x00x", "b\x00y"}
	if !cmp.Equal(got, want) {
		t.Errorf("group order: got %q, want %q", got, want)
	}
}

func TestDescribeSingleRowGroups(t *testing.T) {
	// Every group has one row, so the value column is constant
	// within every group and must not leak into the report.
	tab := events([]string{"A", "B"}, []string{"n", "n"}, []int{1, 2})
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	if r.Table.Column("duration") != nil {
		t.Errorf("raw duration column leaked into report: %q", r.Table.Columns())
	}
	if !math.IsNaN(r.Groups[0].Summaries[0].StdDev) {
		t.Errorf("std of one value: got %v, want NaN", r.Groups[0].Summaries[0].StdDev)
	}
}

func TestDescribeCosts(t *testing.T) {
	tab := new(table.Builder).
		Add("name", []string{"f", "g", "f"}).
		Add("cost_of_javascript", []int{10, 1, 20}).
		Add("cost_of_impl", []float64{1, 2, 3}).
		Add("cost_of_cpp", []int{0, 0, 4}).
		Done()
	r, err := Describe(tab, "name")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"cost_of_javascript", "cost_of_impl", "cost_of_cpp"}; !cmp.Equal(r.Columns, want) {
		t.Errorf("summarized columns: got %q, want %q", r.Columns, want)
	}
	f := r.Groups[0]
	if f.Key[0] != "f" || f.Summaries[1].Mean != 2 || f.Summaries[2].Max != 4 {
		t.Errorf("group f: got %+v", f)
	}
}

func TestDescribeSkipsText(t *testing.T) {
	tab := new(table.Builder).
		Add("measurement_type", []string{"A"}).
		Add("name", []string{"n"}).
		Add("duration", []int{1}).
		Add("additional_data", []string{"note"}).
		Done()
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(r.Columns, []string{"duration"}) {
		t.Errorf("summarized columns: got %q, want [duration]", r.Columns)
	}
	if r.Table.Column("additional_data") != nil {
		t.Errorf("text column leaked into report")
	}
}

func TestDescribeEmpty(t *testing.T) {
	tab := events([]string{}, []string{}, []int{})
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Groups) != 0 || r.Table.Len() != 0 {
		t.Errorf("want no groups, got %d groups and %d rows", len(r.Groups), r.Table.Len())
	}
}

func TestDescribeErrors(t *testing.T) {
	tab := events([]string{"A"}, []string{"n"}, []int{1})
	if _, err := Describe(tab); err == nil {
		t.Errorf("no keys: want error")
	}
	if _, err := Describe(tab, "bogus"); err == nil {
		t.Errorf("unknown key: want error")
	}
	if _, err := Describe(tab, "name", "name"); err == nil {
		t.Errorf("duplicate key: want error")
	}
}

func TestDescribeGroups(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "rows")
		types := make([]string, n)
		names := make([]string, n)
		durations := make([]int, n)
		want := make(map[string]int)
		for i := 0; i < n; i++ {
			types[i] = rapid.SampledFrom([]string{"SelfTime", "Stat", "Cost"}).Draw(t, "type")
			names[i] = rapid.SampledFrom([]string{"f", "g", "h", "k"}).Draw(t, "name")
			durations[i] = rapid.IntRange(0, 1000).Draw(t, "duration")
			want[types[i]+"\x00"+names[i]]++
		}

		r, err := Describe(events(types, names, durations), "measurement_type", "name")
		if err != nil {
			t.Fatal(err)
		}
		if len(r.Groups) != len(want) {
			t.Fatalf("got %d groups, want %d", len(r.Groups), len(want))
		}
		var keys []string
		for _, g := range r.Groups {
			key := keyString(g)
			keys = append(keys, key)
			if got := g.Summaries[0].Count; got != want[key] {
				t.Fatalf("group %s: count %d, want %d", key, got, want[key])
			}
		}
		if !sort.StringsAreSorted(keys) {
			t.Fatalf("groups not in key order: %q", keys)
		}
	})
}

func TestWriteCSV(t *testing.T) {
	tab := events(
		[]string{"A", "A", "B"},
		[]string{"n1", "n1", "n2"},
		[]int{10, 20, 5},
	)
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := `measurement_type,name,duration count,duration mean,duration std,duration min,duration 25%,duration 50%,duration 75%,duration max
A,n1,2,15,7.0710678118654755,10,12.5,15,17.5,20
B,n2,1,5,,5,5,5,5,5
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteText(t *testing.T) {
	tab := events([]string{"A", "A"}, []string{"n1", "n1"}, []int{10, 20})
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, Text); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header and one row, got:\n%s", buf.String())
	}
	for _, want := range []string{"measurement_type", "duration count", "duration 75%"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("header %q missing %q", lines[0], want)
		}
	}
	for _, want := range []string{"n1", "15.000000", "7.071068"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	tab := events([]string{"A"}, []string{"<n1>"}, []int{10})
	r, err := Describe(tab, "measurement_type", "name")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, HTML); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{"<th>duration mean", "<td>&lt;n1&gt;", "<td>10"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML missing %q:\n%s", want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{Text, CSV, HTML} {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("ParseFormat(xml): want error")
	}
}
