// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/measurestat/measurestat/measure"
)

// Query types.
const (
	SelfTimeQuery = "SelfTime"
	StatQuery     = "Stat"
	ReduceQuery   = "Reduce"
	CostQuery     = "Cost"
)

// A Query selects zones by name and computes one row per zone.
type Query struct {
	Type string `json:"type"`
	Node string `json:"node"`

	// PartialIgnore lists the names of partially overlapping zones
	// excluded from SelfTime.
	PartialIgnore []string `json:"partial_ignore,omitempty"`

	// IgnoreCount selects the zone a Reduce query reduces: the
	// IgnoreCount'th (from 0) zone named Node.
	IgnoreCount int `json:"ignore_count,omitempty"`
}

// A Config is a set of queries.
type Config struct {
	// Ignores lists the names of contained zones excluded from
	// self and total times.
	Ignores []string `json:"ignores"`
	Queries []Query  `json:"queries"`
}

// ParseConfig decodes a JSON query configuration from r.
func ParseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing query config: %w", err)
	}
	for i, q := range cfg.Queries {
		switch q.Type {
		case SelfTimeQuery, StatQuery, ReduceQuery, CostQuery:
		default:
			return nil, fmt.Errorf("query %d: unknown type %q", i, q.Type)
		}
		if q.Node == "" {
			return nil, fmt.Errorf("query %d: missing node", i)
		}
		if q.IgnoreCount < 0 {
			return nil, fmt.Errorf("query %d: negative ignore_count %d", i, q.IgnoreCount)
		}
	}
	return &cfg, nil
}

// StatColumns are the columns of Stat rows.
var StatColumns = []string{"name", "duration", "start", "end"}

// Header returns the column names of the rows of q, or nil if q
// reproduces input records.
func (q *Query) Header() []string {
	switch q.Type {
	case SelfTimeQuery:
		return measure.DataPoints.Columns
	case StatQuery:
		return StatColumns
	case CostQuery:
		return measure.Costs.Columns
	}
	return nil
}

func itoa(x int64) string {
	return strconv.FormatInt(x, 10)
}

// Rows runs q over t and returns its result rows:
//
//	SelfTime  SelfTime,<name>,<self time>,
//	Stat      <name>,<duration>,<start>,<end>
//	Reduce    the input records of the partially overlapping zones,
//	          the contained zones, and the reduced zone itself
//	Cost      <name>,<cost of javascript>,<cost of impl>,<cost of cpp>
//
// SelfTime rows follow the datapoints schema and Cost rows the costs
// schema. Cost skips zones that are not inside a native call.
func (cfg *Config) Rows(t *Timeline, q *Query, log *zap.Logger) ([][]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var rows [][]string
	switch q.Type {
	case SelfTimeQuery:
		for _, i := range t.Named(q.Node) {
			self := t.SelfTime(i, q.PartialIgnore, cfg.Ignores)
			rows = append(rows, []string{SelfTimeQuery, t.Zone(i).Name, itoa(self), ""})
		}

	case StatQuery:
		for _, i := range t.Named(q.Node) {
			z := t.Zone(i)
			rows = append(rows, []string{z.Name, itoa(z.Duration), itoa(z.Start), itoa(z.End)})
		}

	case ReduceQuery:
		found := t.Named(q.Node)
		if q.IgnoreCount >= len(found) {
			return nil, fmt.Errorf("reduce %s: ignore_count %d, but only %d zones", q.Node, q.IgnoreCount, len(found))
		}
		i := found[q.IgnoreCount]
		idxs := append(t.PartiallyContained(i), t.Contained(i)...)
		for _, j := range append(idxs, i) {
			rows = append(rows, t.Zone(j).record())
		}

	case CostQuery:
		for _, i := range t.Named(q.Node) {
			c, ok := t.Cost(i, cfg.Ignores)
			if !ok {
				log.Debug("skipping zone outside native call", zap.Int("index", i), zap.String("name", t.Zone(i).Name))
				continue
			}
			rows = append(rows, []string{c.Name, itoa(c.JavaScript), itoa(c.Impl), itoa(c.Cpp)})
		}

	default:
		return nil, fmt.Errorf("unknown query type %q", q.Type)
	}
	return rows, nil
}

// record returns the input record of z, or a synthesized TM_ZONE
// record if z was not read from a file.
func (z *Zone) record() []string {
	if z.Record != nil {
		return z.Record
	}
	return []string{ZoneTag, strconv.FormatUint(z.TrackID, 10), z.Name, itoa(z.Start), itoa(z.End)}
}

// Run runs every query of cfg over t and writes the result rows to w
// as CSV. If header is set, each query's rows are preceded by its
// column names. If any query fails, nothing is written.
func (cfg *Config) Run(t *Timeline, w io.Writer, header bool, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	var out [][]string
	for i := range cfg.Queries {
		q := &cfg.Queries[i]
		rows, err := cfg.Rows(t, q, log)
		if err != nil {
			return err
		}
		log.Debug("ran query", zap.String("type", q.Type), zap.String("node", q.Node), zap.Int("rows", len(rows)))
		if h := q.Header(); header && h != nil {
			out = append(out, h)
		}
		out = append(out, rows...)
	}
	return csv.NewWriter(w).WriteAll(out)
}
