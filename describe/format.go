// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package describe

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/aclements/go-gg/table"
	"github.com/google/safehtml/template"
)

// A Format is an output format for a Report.
type Format int

const (
	Text Format = iota
	CSV
	HTML
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case CSV:
		return "csv"
	case HTML:
		return "html"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{Text, CSV, HTML} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (want text, csv, or html)", s)
}

// Write writes r to w in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case Text:
		return r.WriteText(w)
	case CSV:
		return r.WriteCSV(w)
	case HTML:
		return r.WriteHTML(w)
	}
	return fmt.Errorf("unknown format %v", f)
}

// WriteText writes r to w as an aligned text table, one row per group.
func (r *Report) WriteText(w io.Writer) error {
	formats := make([]string, 0, len(r.Table.Columns()))
	for _, col := range r.Table.Columns() {
		if table.ColType(r.Table, col).Elem().Kind() == reflect.Float64 {
			formats = append(formats, "%.6f")
		} else {
			formats = append(formats, "%v")
		}
	}
	return table.Fprint(w, r.Table, formats...)
}

// rows returns the column names of the report followed by its
// rows, formatted as strings.
func (r *Report) rows() (header []string, rows [][]string) {
	header = append(header, r.Keys...)
	for _, col := range r.Columns {
		for _, stat := range StatNames {
			header = append(header, StatColumn(col, stat))
		}
	}
	for _, g := range r.Groups {
		row := make([]string, 0, len(header))
		for _, k := range g.Key {
			row = append(row, fmt.Sprint(k))
		}
		for _, sum := range g.Summaries {
			row = append(row, strconv.Itoa(sum.Count))
			for _, v := range sum.Stats()[1:] {
				row = append(row, formatFloat(v))
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes r to w as CSV with a header row. Undefined
// statistics are written as empty fields.
func (r *Report) WriteCSV(w io.Writer) error {
	header, rows := r.rows()
	cw := csv.NewWriter(w)
	cw.Write(header)
	cw.WriteAll(rows)
	return cw.Error()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<table class='describe'>
<tr>{{range .Header}}<th>{{.}}{{end}}
{{range .Rows}}<tr>{{range .}}<td>{{.}}{{end}}
{{end -}}
</table>
`))

// WriteHTML writes r to w as an HTML table.
func (r *Report) WriteHTML(w io.Writer) error {
	header, rows := r.rows()
	return htmlTemplate.Execute(w, struct {
		Header []string
		Rows   [][]string
	}{header, rows})
}
