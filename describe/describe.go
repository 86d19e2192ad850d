// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package describe computes per-group descriptive statistics of a
// measurement table.
//
// Describe groups a table by one or more key columns and summarizes
// every other numeric column of each group with a Summary. The result
// is itself a table with one row per group, ordered by key.
package describe

import (
	"fmt"
	"reflect"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// A Report is the result of Describe.
type Report struct {
	// Keys are the names of the grouping columns.
	Keys []string

	// Columns are the names of the summarized columns.
	Columns []string

	// Groups has one entry per distinct key tuple, in ascending
	// key order.
	Groups []*Group

	// Table has one row per group. It has the key columns
	// followed by a "<column> <stat>" column for every summarized
	// column and every name in StatNames.
	Table *table.Table
}

// A Group is one row of a Report.
type Group struct {
	// Key holds the values of the Report's key columns.
	Key []interface{}

	// Summaries is parallel to Report.Columns.
	Summaries []Summary
}

// StatColumn returns the name of the report column holding stat of
// the summarized column col.
func StatColumn(col, stat string) string {
	return col + " " + stat
}

// Describe groups t by keys and summarizes the remaining numeric
// columns of each group.
//
// Groups are formed from the distinct key tuples observed in t and are
// ordered by key, comparing the first key column first. Non-numeric
// columns that are not keys are ignored.
func Describe(t *table.Table, keys ...string) (*Report, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no grouping columns")
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		if t.Column(k) == nil {
			return nil, fmt.Errorf("unknown grouping column %q", k)
		}
		if seen[k] {
			return nil, fmt.Errorf("duplicate grouping column %q", k)
		}
		seen[k] = true
	}

	var cols []string
	for _, col := range t.Columns() {
		if !seen[col] && isNumeric(table.ColType(t, col)) {
			cols = append(cols, col)
		}
	}

	// Project down to the columns we summarize so other columns
	// can't be carried through as "effectively constant".
	var b table.Builder
	for _, col := range keys {
		b.Add(col, t.MustColumn(col))
	}
	for _, col := range cols {
		b.Add(col, t.MustColumn(col))
	}
	var g table.Grouping = b.Done()

	// SortBy skips columns that are already sorted, which breaks
	// multi-column sorts, so do a stable sort one key at a time.
	for i := len(keys) - 1; i >= 0; i-- {
		g = table.SortBy(g, keys[i])
	}

	r := &Report{Keys: keys, Columns: cols}
	out := table.Flatten(ggstat.Agg(keys...)(r.agg).F(g))
	for _, col := range cols {
		// A column whose values are equal within every group is
		// carried through by Agg.
		if out.Column(col) != nil {
			out = table.Flatten(table.Remove(out, col))
		}
	}
	r.Table = out

	for i, grp := range r.Groups {
		grp.Key = make([]interface{}, len(keys))
		for j, k := range keys {
			grp.Key[j] = reflect.ValueOf(r.Table.MustColumn(k)).Index(i).Interface()
		}
	}
	return r, nil
}

// agg implements ggstat.Aggregator. It summarizes every column in
// r.Columns and records the per-group summaries in r.Groups.
func (r *Report) agg(input table.Grouping, output *table.Builder) {
	gids := input.Tables()
	r.Groups = make([]*Group, len(gids))
	for i := range r.Groups {
		r.Groups[i] = &Group{Summaries: make([]Summary, len(r.Columns))}
	}

	for ci, col := range r.Columns {
		counts := make([]int, len(gids))
		stats := make([][]float64, len(StatNames))
		for i := range stats {
			stats[i] = make([]float64, len(gids))
		}
		for gi, gid := range gids {
			var xs []float64
			slice.Convert(&xs, input.Table(gid).MustColumn(col))
			sum := Summarize(xs)
			r.Groups[gi].Summaries[ci] = sum
			counts[gi] = sum.Count
			for si, v := range sum.Stats() {
				stats[si][gi] = v
			}
		}
		output.Add(StatColumn(col, StatNames[0]), counts)
		for si := 1; si < len(StatNames); si++ {
			output.Add(StatColumn(col, StatNames[si]), stats[si])
		}
	}
}

func isNumeric(t reflect.Type) bool {
	switch t.Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
