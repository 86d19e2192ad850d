// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measure loads CSV measurement logs into go-gg tables and
// binds them to the fixed measurement schemas.
//
// There are two loader modes. Raw mode reads header-less rows, drops
// rows with two or fewer fields, and coerces the third field to an
// integer. Tabular mode treats the first row as a header and infers a
// type for every column. The two modes deliberately disagree on how
// strict they are about malformed rows.
package measure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
)

// A Mode selects how a measurement file is parsed.
type Mode int

const (
	// Raw parses header-less rows. Rows with two or fewer fields
	// are dropped and field 2 is coerced to an int.
	Raw Mode = iota
	// Tabular parses a header row followed by rows of the same
	// arity and infers column types.
	Tabular
)

func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case Tabular:
		return "tabular"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "raw":
		return Raw, nil
	case "tabular":
		return Tabular, nil
	}
	return 0, fmt.Errorf("unknown loader mode %q (want raw or tabular)", s)
}

// A SyntaxError represents a malformed row at a particular line of a
// measurement file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// DurationField is the index of the field raw mode coerces to an int.
const DurationField = 2

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// csvError converts an error from encoding/csv into a *SyntaxError.
func csvError(err error, fileName string) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &SyntaxError{fileName, pe.Line, pe.Err.Error()}
	}
	return err
}

// ReadRaw reads header-less measurement rows from r.
//
// Rows with two or fewer fields are silently dropped. Field
// DurationField of every retained row must be an integer (surrounding
// spaces are allowed); otherwise ReadRaw returns a *SyntaxError and no
// table. The columns of the result are named by position ("0", "1",
// ...). Column "2" is an []int column and all others are []string.
// Retained rows shorter than the widest row are padded with "".
//
// fileName is used in error messages; it is purely diagnostic.
func ReadRaw(r io.Reader, fileName string) (*table.Table, error) {
	cr := newCSVReader(r)

	var rows [][]string
	var durations []int
	width := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvError(err, fileName)
		}
		if len(rec) <= DurationField {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSpace(rec[DurationField]))
		if err != nil {
			line, _ := cr.FieldPos(DurationField)
			return nil, &SyntaxError{fileName, line, fmt.Sprintf("field %d: invalid integer %q", DurationField, rec[DurationField])}
		}
		rows = append(rows, rec)
		durations = append(durations, d)
		if len(rec) > width {
			width = len(rec)
		}
	}

	var b table.Builder
	for i := 0; i < width; i++ {
		name := strconv.Itoa(i)
		if i == DurationField {
			b.Add(name, durations)
			continue
		}
		col := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				col[j] = row[i]
			}
		}
		b.Add(name, col)
	}
	return b.Done(), nil
}

// ReadTabular reads a header row followed by measurement rows from r.
//
// Every row must have as many fields as the header. Each column is
// []int if every value parses as an integer, else []float64 if every
// value parses as a float, else []string.
func ReadTabular(r io.Reader, fileName string) (*table.Table, error) {
	cr := newCSVReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SyntaxError{fileName, 1, "missing header row"}
	} else if err != nil {
		return nil, csvError(err, fileName)
	}
	seen := make(map[string]bool)
	for _, col := range header {
		if seen[col] {
			return nil, &SyntaxError{fileName, 1, fmt.Sprintf("duplicate column %q", col)}
		}
		seen[col] = true
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvError(err, fileName)
		}
		if len(rec) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &SyntaxError{fileName, line, fmt.Sprintf("expected %d fields, got %d", len(header), len(rec))}
		}
		rows = append(rows, rec)
	}
	return table.TableFromStrings(header, rows, true), nil
}

// Load reads the measurement file at path in the given mode.
func Load(path string, mode Mode) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch mode {
	case Raw:
		return ReadRaw(f, path)
	case Tabular:
		return ReadTabular(f, path)
	}
	return nil, fmt.Errorf("unknown loader mode %v", mode)
}
