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

package logger

import "sync/atomic"

// Permission is checked by Log() and Logf() before an entry is made.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (allow) AllowLogging() bool {
	return true
}

// Allow is the Permission to use when an entry should always be made.
var Allow Permission = allow{}

// Limited is a Permission that allows a fixed number of entries and then
// refuses. Useful for problems that can occur on every line of a long input.
type Limited struct {
	max  int64
	used atomic.Int64
}

// NewLimited is the preferred method of initialisation for the Limited type.
func NewLimited(max int) *Limited {
	return &Limited{max: int64(max)}
}

// AllowLogging implements the Permission interface.
func (l *Limited) AllowLogging() bool {
	return l.used.Add(1) <= l.max
}

// Refused returns the number of entries that have been refused.
func (l *Limited) Refused() int {
	return int(max(l.used.Load()-l.max, 0))
}
