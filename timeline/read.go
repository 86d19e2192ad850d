// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/measurestat/measurestat/measure"
)

// Record tags of telemetry CSV dumps. Rows with any other tag in the
// first field are ignored.
const (
	TrackTag = "TM_TRACK"
	ZoneTag  = "TM_ZONE"
)

// records calls f for every record of r whose first field is tag.
func records(r io.Reader, fileName, tag string, f func(rec []string, line func(field int) int) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	line := func(field int) int {
		l, _ := cr.FieldPos(field)
		return l
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return &measure.SyntaxError{FileName: fileName, Line: pe.Line, Msg: pe.Err.Error()}
			}
			return err
		}
		if rec[0] != tag {
			continue
		}
		if err := f(rec, line); err != nil {
			return err
		}
	}
}

func fieldError(fileName string, line, field int, what, val string) error {
	return &measure.SyntaxError{FileName: fileName, Line: line, Msg: fmt.Sprintf("field %d: invalid %s %q", field, what, val)}
}

// ReadTracks reads the TM_TRACK rows of r:
//
//	TM_TRACK,<id>,<name>,...
func ReadTracks(r io.Reader, fileName string) ([]Track, error) {
	var tracks []Track
	err := records(r, fileName, TrackTag, func(rec []string, line func(int) int) error {
		if len(rec) < 3 {
			return &measure.SyntaxError{FileName: fileName, Line: line(0), Msg: fmt.Sprintf("%s row has %d fields, want at least 3", TrackTag, len(rec))}
		}
		id, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			return fieldError(fileName, line(1), 1, "track id", rec[1])
		}
		tracks = append(tracks, Track{ID: id, Name: rec[2]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

// ReadZones reads the TM_ZONE rows of r that lie on one of tracks:
//
//	TM_ZONE,<track id>,<name>,<start>,<end>,...
//
// The zones are returned in file order.
func ReadZones(r io.Reader, fileName string, tracks []Track) ([]Zone, error) {
	onTrack := make(map[uint64]bool)
	for _, t := range tracks {
		onTrack[t.ID] = true
	}

	var zones []Zone
	err := records(r, fileName, ZoneTag, func(rec []string, line func(int) int) error {
		if len(rec) < 5 {
			return &measure.SyntaxError{FileName: fileName, Line: line(0), Msg: fmt.Sprintf("%s row has %d fields, want at least 5", ZoneTag, len(rec))}
		}
		id, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			return fieldError(fileName, line(1), 1, "track id", rec[1])
		}
		if !onTrack[id] {
			return nil
		}
		var ts [2]int64
		for i := range ts {
			f := 3 + i
			if ts[i], err = strconv.ParseInt(rec[f], 10, 64); err != nil {
				return fieldError(fileName, line(f), f, "timestamp", rec[f])
			}
		}
		z := NewZone(rec[2], ts[0], ts[1])
		z.TrackID = id
		z.Record = rec
		zones = append(zones, z)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return zones, nil
}

// SelectTracks returns the tracks named name, or all tracks if name is
// empty.
func SelectTracks(tracks []Track, name string) []Track {
	if name == "" {
		return tracks
	}
	var out []Track
	for _, t := range tracks {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}
