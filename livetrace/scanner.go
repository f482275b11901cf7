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
	"bufio"
	"io"
	"strings"
)

// Scanner reads trace lines from an io.Reader. Blank lines are skipped.
type Scanner struct {
	s      *bufio.Scanner
	lineNo int
}

// NewScanner is the preferred method of initialisation for the Scanner type.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		s: bufio.NewScanner(r),
	}
}

// Next returns the next trace line. The error will be io.EOF at the end of
// the input. An error wrapping MalformedTraceLine does not stop the scanner
// and the caller can choose to continue with the next line.
func (sc *Scanner) Next() (Line, error) {
	for sc.s.Scan() {
		sc.lineNo++
		t := strings.TrimSpace(sc.s.Text())
		if t == "" {
			continue
		}
		return ParseLine(t)
	}

	if err := sc.s.Err(); err != nil {
		return Line{}, err
	}
	return Line{}, io.EOF
}

// LineNo returns the number of the line most recently returned by Next().
func (sc *Scanner) LineNo() int {
	return sc.lineNo
}
