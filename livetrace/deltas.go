// This file is part of YMStream.
//
// YMStream is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YMStream is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YMStream.  If not, see <https://www.gnu.org/licenses/>.

package livetrace

import (
	"errors"
	"io"
	"sort"
)

// Deltas is a histogram of the differences between consecutive trace line
// timestamps.
type Deltas struct {
	Counts map[uint16]int

	// number of lines that could not be parsed
	Malformed int
}

// Min returns the smallest delta seen. Returns false if there were fewer
// than two timestamps.
func (d Deltas) Min() (uint16, bool) {
	k := d.Keys()
	if len(k) == 0 {
		return 0, false
	}
	return k[0], true
}

// Keys returns the deltas in ascending order.
func (d Deltas) Keys() []uint16 {
	k := make([]uint16, 0, len(d.Counts))
	for v := range d.Counts {
		k = append(k, v)
	}
	sort.Slice(k, func(i, j int) bool { return k[i] < k[j] })
	return k
}

// CountDeltas reads all trace lines from the reader and counts the
// differences between the timestamps of consecutive lines. Differences are
// calculated modulo 65536 so that a wrapping timer gives a sensible result.
func CountDeltas(r io.Reader) (Deltas, error) {
	d := Deltas{Counts: make(map[uint16]int)}

	sc := NewScanner(r)
	var prev uint16
	first := true

	for {
		l, err := sc.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return d, nil
			}
			if errors.Is(err, MalformedTraceLine) {
				d.Malformed++
				continue
			}
			return d, err
		}

		if !first {
			d.Counts[l.Timestamp-prev]++
		}
		prev = l.Timestamp
		first = false
	}
}
