// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"sort"

	"github.com/saferwall/minidump/log"
)

// AddrRange is an inclusive [Start, End] byte address interval.
type AddrRange struct {
	Start uint64
	End   uint64
}

// Contains reports whether addr falls within the range, inclusive.
func (r AddrRange) Contains(addr uint64) bool {
	return addr >= r.Start && addr <= r.End
}

// RangeEntry pairs a range with its associated value, the unit BuildRangeMap
// consumes and RangeMap.Entries() hands back.
type RangeEntry[V comparable] struct {
	Range AddrRange
	Value V
}

// RangeMap is a sorted, non-overlapping address-indexed container. For any
// two adjacent entries a, b in iteration order, a.Range.End < b.Range.Start.
type RangeMap[V comparable] struct {
	entries []RangeEntry[V]
}

// Len returns the number of non-overlapping entries.
func (m *RangeMap[V]) Len() int {
	return len(m.entries)
}

// Lookup returns the value whose range contains addr, via binary search.
func (m *RangeMap[V]) Lookup(addr uint64) (V, bool) {
	var zero V
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].Range.End >= addr
	})
	if i < len(m.entries) && m.entries[i].Range.Contains(addr) {
		return m.entries[i].Value, true
	}
	return zero, false
}

// Ranges returns the map's entries in ascending address order.
func (m *RangeMap[V]) Ranges() []AddrRange {
	out := make([]AddrRange, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Range
	}
	return out
}

// Entries returns the map's (range, value) pairs in ascending address order.
func (m *RangeMap[V]) Entries() []RangeEntry[V] {
	out := make([]RangeEntry[V], len(m.entries))
	copy(out, m.entries)
	return out
}

// saturatingAddOne returns addr+1, saturating at the uint64 maximum instead
// of wrapping, so adjacency checks near the top of the address space never
// overflow.
func saturatingAddOne(addr uint64) uint64 {
	if addr == ^uint64(0) {
		return addr
	}
	return addr + 1
}

// BuildRangeMap builds an overlap-tolerant RangeMap from possibly
// overlapping (range, value) input pairs. This is the Go translation of
// IntoRangeMapSafe (minidump-common/src/traits.rs): inputs are sorted by
// start address (stable, so equal starts keep their arrival order), then
// scanned once:
//
//   - if the next range starts at or before the last accepted range's end,
//     and the values differ, the overlap is a conflict: warn is called once
//     with both ranges and values, and the next entry is dropped;
//   - if the next range starts at or before last.End+1 (saturating) and the
//     values are equal, the ranges are merged (last.End grows to the max of
//     the two);
//   - otherwise the next range is appended as a new, disjoint entry.
//
// warn may be nil, in which case conflicts are dropped silently.
func BuildRangeMap[V comparable](input []RangeEntry[V], warn func(format string, args ...interface{})) *RangeMap[V] {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	sorted := make([]RangeEntry[V], len(input))
	copy(sorted, input)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start < sorted[j].Range.Start
	})

	out := &RangeMap[V]{entries: make([]RangeEntry[V], 0, len(sorted))}

	for _, next := range sorted {
		if len(out.entries) > 0 {
			last := &out.entries[len(out.entries)-1]

			if next.Range.Start <= last.Range.End && next.Value != last.Value {
				warn("overlapping ranges %v and %v map to values %v and %v",
					last.Range, next.Range, last.Value, next.Value)
				continue
			}

			if next.Range.Start <= saturatingAddOne(last.Range.End) && next.Value == last.Value {
				if next.Range.End > last.Range.End {
					last.Range.End = next.Range.End
				}
				continue
			}
		}

		out.entries = append(out.entries, next)
	}

	return out
}

// rangeMapLogger adapts a *log.Helper into the warn callback BuildRangeMap
// expects, matching §4.5's "parameterise with a logging sink" design note.
func rangeMapLogger(h *log.Helper) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		h.Warnf(format, args...)
	}
}
