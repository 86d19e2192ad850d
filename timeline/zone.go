// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timeline queries telemetry zone dumps and produces
// measurement rows for measurestat.
//
// A telemetry dump consists of tracks (threads) and zones, which are
// named time intervals on a track. Zones nest: a zone that encloses
// another zone's interval is its parent. The queries in this package
// derive durations from that nesting, such as the time spent in a
// zone excluding selected children.
package timeline

import (
	"fmt"
	"sort"
)

// A Track is a named thread of zones.
type Track struct {
	ID   uint64
	Name string
}

// A Zone is a named interval on a track.
type Zone struct {
	Name       string
	Start, End int64

	// Duration is the absolute difference of Start and End.
	Duration int64

	// Index is the position of the zone in its Timeline.
	Index int

	TrackID uint64

	// Record is the CSV record the zone was read from, if any.
	Record []string
}

// NewZone returns a zone with the given interval.
func NewZone(name string, start, end int64) Zone {
	d := end - start
	if d < 0 {
		d = -d
	}
	return Zone{Name: name, Start: start, End: end, Duration: d}
}

func (z *Zone) String() string {
	return fmt.Sprintf("%d: Zone(%d): %s,%d,%d", z.TrackID, z.Duration, z.Name, z.Start, z.End)
}

// Contains reports whether z encloses o. A zone contains itself.
func (z *Zone) Contains(o *Zone) bool {
	return z.Start <= o.Start && z.End >= o.End
}

// PartiallyContains reports whether z and o overlap with exactly one
// of o's endpoints outside z.
func (z *Zone) PartiallyContains(o *Zone) bool {
	return z.Start > o.Start && z.Start <= o.End && z.End >= o.End ||
		z.End < o.End && z.End >= o.Start && z.Start <= o.Start
}

// StartsBefore reports whether z starts strictly before o.
func (z *Zone) StartsBefore(o *Zone) bool {
	return z.Start < o.Start
}

// CompletesBefore reports whether z ends strictly before o starts.
func (z *Zone) CompletesBefore(o *Zone) bool {
	return o.Start > z.End
}

// Overlap returns the length of the intersection of z and o, or 0 if
// they are disjoint.
func (z *Zone) Overlap(o *Zone) int64 {
	lo, hi := z.Start, z.End
	if o.Start > lo {
		lo = o.Start
	}
	if o.End < hi {
		hi = o.End
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// A Timeline is a set of zones ordered by start time.
//
// Zones are identified by their index. Search methods return indexes
// in the order they were found, nearest first.
type Timeline struct {
	zones []Zone
}

// New returns a timeline of zones. The zones are copied, stably sorted
// by start time, and their Index fields set.
func New(zones []Zone) *Timeline {
	zs := append([]Zone(nil), zones...)
	sort.SliceStable(zs, func(i, j int) bool { return zs[i].Start < zs[j].Start })
	for i := range zs {
		zs[i].Index = i
	}
	return &Timeline{zs}
}

// Len returns the number of zones in t.
func (t *Timeline) Len() int {
	return len(t.zones)
}

// Zone returns the i'th zone of t.
func (t *Timeline) Zone(i int) *Zone {
	return &t.zones[i]
}

// Named returns the indexes of the zones whose name is one of names,
// in start order.
func (t *Timeline) Named(names ...string) []int {
	var out []int
	for i := range t.zones {
		if hasName(names, t.zones[i].Name) {
			out = append(out, i)
		}
	}
	return out
}

// filterNamed returns the indexes in idxs whose zone is named one of
// names.
func (t *Timeline) filterNamed(idxs []int, names ...string) []int {
	var out []int
	for _, i := range idxs {
		if hasName(names, t.zones[i].Name) {
			out = append(out, i)
		}
	}
	return out
}

func hasName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type scanResult int

const (
	scanSkip scanResult = iota
	scanAdd
	scanStop
)

// scan visits the neighbors of zone i, first walking toward the start
// of the timeline and then toward the end. Each walk stops at the
// first neighbor for which visit returns scanStop.
func (t *Timeline) scan(i int, visit func(z, o *Zone) scanResult) []int {
	var out []int
	z := &t.zones[i]
	walk := func(j int) bool {
		switch visit(z, &t.zones[j]) {
		case scanAdd:
			out = append(out, j)
		case scanStop:
			return false
		}
		return true
	}
	for j := i - 1; j >= 0 && walk(j); j-- {
	}
	for j := i + 1; j < len(t.zones) && walk(j); j++ {
	}
	return out
}

// Contained returns the zones contained in zone i, other than i.
func (t *Timeline) Contained(i int) []int {
	return t.scan(i, func(z, o *Zone) scanResult {
		if o.Start < z.Start || z.CompletesBefore(o) {
			return scanStop
		}
		if z.Contains(o) {
			return scanAdd
		}
		return scanSkip
	})
}

// PartiallyContained returns the zones that overlap zone i with one
// endpoint outside it. The scan in each direction stops at the first
// zone that neither partially overlaps nor nests with zone i.
func (t *Timeline) PartiallyContained(i int) []int {
	return t.scan(i, func(z, o *Zone) scanResult {
		switch {
		case z.PartiallyContains(o):
			return scanAdd
		case z.Contains(o), o.Contains(z):
			return scanSkip
		}
		return scanStop
	})
}

// Parents returns the zones that contain zone i, other than i,
// innermost first.
func (t *Timeline) Parents(i int) []int {
	return t.scan(i, func(z, o *Zone) scanResult {
		if o.Start > z.Start {
			return scanStop
		}
		if o.Contains(z) {
			return scanAdd
		}
		return scanSkip
	})
}

// notContainedIn returns the indexes in idxs whose zone is not
// contained in any zone of containers.
func (t *Timeline) notContainedIn(containers, idxs []int) []int {
	var out []int
outer:
	for _, i := range idxs {
		for _, c := range containers {
			if t.zones[c].Contains(&t.zones[i]) {
				continue outer
			}
		}
		out = append(out, i)
	}
	return out
}

// overlapSum returns the total overlap of zone i with the zones in
// idxs.
func (t *Timeline) overlapSum(i int, idxs []int) int64 {
	var sum int64
	for _, j := range idxs {
		sum += t.zones[i].Overlap(&t.zones[j])
	}
	return sum
}

func subFloor(x, y int64) int64 {
	if y > x {
		return 0
	}
	return x - y
}

// SelfTime returns the duration of zone i minus its overlap with
// partially overlapping zones named in partialIgnores and minus the
// duration of contained zones named in ignores. Contained zones that
// lie inside one of the subtracted partial zones are only counted
// once. The result is never negative.
func (t *Timeline) SelfTime(i int, partialIgnores, ignores []string) int64 {
	partials := t.filterNamed(t.PartiallyContained(i), partialIgnores...)
	contained := t.filterNamed(t.Contained(i), ignores...)
	contained = t.notContainedIn(partials, contained)
	d := subFloor(t.zones[i].Duration, t.overlapSum(i, partials))
	return subFloor(d, t.overlapSum(i, contained))
}

// TotalTime returns the duration of zone i minus the duration of
// contained zones named in ignores.
func (t *Timeline) TotalTime(i int, ignores []string) int64 {
	contained := t.filterNamed(t.Contained(i), ignores...)
	return subFloor(t.zones[i].Duration, t.overlapSum(i, contained))
}

// Zone names that mark a call from JavaScript into native code, in
// order of preference.
const (
	APICallZone      = "V8.Builtin_HandleApiCall"
	CallbackZone     = "V8.ExternalCallback"
	ArgConverterZone = "toImplArgs2"
)

// A Cost breaks the time of a native call made from JavaScript into
// its parts.
type Cost struct {
	Name string

	// JavaScript is the time from the start of the native call to
	// the zone itself, excluding the zone.
	JavaScript int64

	// Impl is the self time of argument conversion.
	Impl int64

	// Cpp is the self time of the zone.
	Cpp int64
}

// callStart returns the innermost parent of zone i that marks the
// start of a native call.
func (t *Timeline) callStart(i int) (int, bool) {
	parents := t.Parents(i)
	for _, name := range []string{APICallZone, CallbackZone} {
		if p := t.filterNamed(parents, name); len(p) > 0 {
			return p[0], true
		}
	}
	return 0, false
}

// Cost returns the cost breakdown of zone i, excluding contained zones
// named in ignores. It returns false if zone i is not inside a native
// call.
func (t *Timeline) Cost(i int, ignores []string) (Cost, bool) {
	start, ok := t.callStart(i)
	if !ok {
		return Cost{}, false
	}
	self := t.SelfTime(i, nil, ignores)
	c := Cost{
		Name:       t.zones[i].Name,
		JavaScript: subFloor(t.TotalTime(start, ignores), self),
		Cpp:        self,
	}
	if args := t.filterNamed(t.Contained(start), ArgConverterZone); len(args) > 0 {
		c.Impl = t.SelfTime(args[0], nil, ignores)
	}
	return c, true
}
