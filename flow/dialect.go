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

package flow

import (
	"fmt"
	"strings"
)

// Dialect describes the flow control handshake of a device firmware.
type Dialect struct {
	Name string

	// number of bytes in the credit report. either 1 or 2. a two byte
	// credit is sent high byte first
	CreditBytes int

	// whether the host proposes the chunk size and waits for a single byte
	// acknowledgement before sending the chunk
	Ack bool

	// the baud rate the firmware uses if not otherwise specified
	Baud int
}

func (d Dialect) String() string {
	return d.Name
}

// MaxCredit returns the largest credit that can be reported by the dialect.
func (d Dialect) MaxCredit() int {
	if d.CreditBytes == 1 {
		return 0xff
	}
	return 0xffff
}

// List of supported dialects.
var (
	// two byte credit, chunk proposal and acknowledgement
	Slow = Dialect{Name: "slow", CreditBytes: 2, Ack: true, Baud: 1000000}

	// two byte credit followed immediately by the chunk
	Fast = Dialect{Name: "fast", CreditBytes: 2, Ack: false, Baud: 2000000}

	// single byte credit followed immediately by the chunk
	Byte = Dialect{Name: "byte", CreditBytes: 1, Ack: false, Baud: 500000}
)

// Dialects lists the supported dialects in the order they should be presented
// to the user.
var Dialects = []Dialect{Slow, Fast, Byte}

// DialectNames returns the names of the supported dialects.
func DialectNames() []string {
	n := make([]string, 0, len(Dialects))
	for _, d := range Dialects {
		n = append(n, d.Name)
	}
	return n
}

// DialectByName returns the named dialect. The name is not case sensitive.
func DialectByName(name string) (Dialect, error) {
	for _, d := range Dialects {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("flow: unknown firmware dialect %q (one of %s)", name, strings.Join(DialectNames(), ", "))
}
