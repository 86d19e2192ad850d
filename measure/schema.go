// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measure

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aclements/go-gg/table"
)

// A Schema names the columns of one kind of measurement file.
type Schema struct {
	// Name identifies the schema on the command line.
	Name string

	// Alias is a short alternate name.
	Alias string

	// Columns are the column names, in file order.
	Columns []string

	// Numeric lists the columns that must hold numbers.
	Numeric []string

	// GroupBy lists the key columns statistics are grouped by.
	GroupBy []string

	// Mode is the loader mode files of this schema are usually
	// read with.
	Mode Mode
}

var (
	// Events is a stream of timed events, one per row.
	Events = &Schema{
		Name:    "events",
		Alias:   "a",
		Columns: []string{"measurement_type", "name", "duration"},
		Numeric: []string{"duration"},
		GroupBy: []string{"measurement_type", "name"},
		Mode:    Raw,
	}

	// DataPoints is Events with a trailing free-form column.
	DataPoints = &Schema{
		Name:    "datapoints",
		Alias:   "b",
		Columns: []string{"measurement_type", "name", "duration", "additional_data"},
		Numeric: []string{"duration"},
		GroupBy: []string{"measurement_type", "name"},
		Mode:    Tabular,
	}

	// Costs breaks the cost of a named operation down by layer.
	Costs = &Schema{
		Name:    "costs",
		Alias:   "c",
		Columns: []string{"name", "cost_of_javascript", "cost_of_impl", "cost_of_cpp"},
		Numeric: []string{"cost_of_javascript", "cost_of_impl", "cost_of_cpp"},
		GroupBy: []string{"name"},
		Mode:    Tabular,
	}
)

// Schemas lists the known schemas.
var Schemas = []*Schema{Events, DataPoints, Costs}

// LookupSchema returns the schema with the given name or alias.
func LookupSchema(name string) (*Schema, error) {
	for _, s := range Schemas {
		if strings.EqualFold(name, s.Name) || strings.EqualFold(name, s.Alias) {
			return s, nil
		}
	}
	names := make([]string, len(Schemas))
	for i, s := range Schemas {
		names[i] = s.Name
	}
	return nil, fmt.Errorf("unknown schema %q (want one of %s)", name, strings.Join(names, ", "))
}

func (s *Schema) String() string {
	return s.Name
}

// Has reports whether s has a column named col.
func (s *Schema) Has(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func (s *Schema) isNumeric(col string) bool {
	for _, c := range s.Numeric {
		if c == col {
			return true
		}
	}
	return false
}

// An ArityError reports a table whose column count does not match
// the schema it is being bound to.
type ArityError struct {
	Schema string
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("schema %s has %d columns, but table has %d", e.Schema, e.Want, e.Got)
}

// A TypeError reports a column that must be numeric but is not.
type TypeError struct {
	Column string
	Type   reflect.Type
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("column %q must be numeric, but has type %s", e.Column, e.Type)
}

// Bind renames the columns of t positionally to s.Columns.
//
// Bind fails with an *ArityError if t does not have exactly
// len(s.Columns) columns and with a *TypeError if a column listed in
// s.Numeric does not hold integers or floats. A table with no columns
// at all (an empty file) binds to a table with zero rows. Empty string
// columns listed as numeric become empty []float64 columns.
func (s *Schema) Bind(t *table.Table) (*table.Table, error) {
	var b table.Builder
	if t.Columns() == nil {
		for _, col := range s.Columns {
			if s.isNumeric(col) {
				b.Add(col, []float64{})
			} else {
				b.Add(col, []string{})
			}
		}
		return b.Done(), nil
	}

	if got := len(t.Columns()); got != len(s.Columns) {
		return nil, &ArityError{s.Name, len(s.Columns), got}
	}
	for i, from := range t.Columns() {
		to := s.Columns[i]
		data := t.MustColumn(from)
		if s.isNumeric(to) {
			ct := reflect.TypeOf(data)
			switch ct.Elem().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
				reflect.Float32, reflect.Float64:
			default:
				if t.Len() != 0 {
					return nil, &TypeError{to, ct.Elem()}
				}
				data = []float64{}
			}
		}
		b.Add(to, data)
	}
	return b.Done(), nil
}

// Load reads the file at path in mode and binds it to s.
func (s *Schema) Load(path string, mode Mode) (*table.Table, error) {
	t, err := Load(path, mode)
	if err != nil {
		return nil, err
	}
	t, err = s.Bind(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
