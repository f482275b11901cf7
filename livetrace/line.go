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
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/ymstream/chip"
)

// MalformedTraceLine is wrapped by errors returned by ParseLine.
var MalformedTraceLine = errors.New("malformed trace line")

// the field value indicating that a register is unchanged
const placeholder = ".."

// Line is a single parsed trace line.
type Line struct {
	Label     string
	Timestamp uint16

	// a line can have a field for each of the sixteen slots of a frame.
	// commands for the two special slots are kept here and dropped when the
	// line is encoded
	Commands []chip.Command
}

// ParseLine parses a single trace line. Surrounding white space is ignored.
func ParseLine(s string) (Line, error) {
	var l Line

	f := strings.Fields(s)
	if len(f) != 3 {
		return l, fmt.Errorf("livetrace: %w: expected 3 fields, found %d", MalformedTraceLine, len(f))
	}

	l.Label = f[0]

	ts, err := parseTimestamp(f[1])
	if err != nil {
		return l, err
	}
	l.Timestamp = ts

	regs := strings.Split(f[2], "-")
	if len(regs) > chip.FrameSize {
		return l, fmt.Errorf("livetrace: %w: too many registers (%d)", MalformedTraceLine, len(regs))
	}

	l.Commands = make([]chip.Command, 0, len(regs))
	for i, r := range regs {
		if r == placeholder {
			continue
		}
		if len(r) != 2 {
			return l, fmt.Errorf("livetrace: %w: register %d: %q", MalformedTraceLine, i, r)
		}
		v, err := strconv.ParseUint(r, 16, 8)
		if err != nil {
			return l, fmt.Errorf("livetrace: %w: register %d: %q", MalformedTraceLine, i, r)
		}
		l.Commands = append(l.Commands, chip.Command{Register: chip.Register(i), Value: uint8(v)})
	}

	return l, nil
}

// parseTimestamp returns the low sixteen bits of the hex timestamp. The
// timestamp can be of any length.
func parseTimestamp(s string) (uint16, error) {
	if len(s) > 4 {
		s = s[len(s)-4:]
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("livetrace: %w: timestamp %q", MalformedTraceLine, s)
	}
	return uint16(v), nil
}
