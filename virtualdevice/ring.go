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

package virtualdevice

// ring is the circular buffer of the playback device. one slot is always
// left empty so that a full buffer can be distinguished from an empty one.
type ring struct {
	data  []byte
	start int
	end   int
}

func newRing(size int) *ring {
	return &ring{
		data: make([]byte, size),
	}
}

func (r *ring) Len() int {
	if r.end < r.start {
		return r.end - r.start + len(r.data)
	}
	return r.end - r.start
}

// Free returns the number of bytes that can be put into the buffer.
func (r *ring) Free() int {
	return len(r.data) - 1 - r.Len()
}

// Put does not check for overflow. The caller must check Free() first.
func (r *ring) Put(b []byte) {
	for _, v := range b {
		r.data[r.end] = v
		r.end++
		if r.end == len(r.data) {
			r.end = 0
		}
	}
}

// Get returns false if the buffer is empty.
func (r *ring) Get() (uint8, bool) {
	if r.start == r.end {
		return 0, false
	}
	v := r.data[r.start]
	r.start++
	if r.start == len(r.data) {
		r.start = 0
	}
	return v, true
}
