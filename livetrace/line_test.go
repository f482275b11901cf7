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

package livetrace_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/livetrace"
	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/wire"
)

func expectCommands(t *testing.T, got []chip.Command, expected []chip.Command) {
	t.Helper()
	test.ExpectSlice(t, got, expected)
}

func TestPlaceholders(t *testing.T) {
	l, err := livetrace.ParseLine("A 0000 00-..-05")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Label, "A")
	test.ExpectEquality(t, l.Timestamp, uint16(0))
	expectCommands(t, l.Commands, []chip.Command{{Register: 0, Value: 0x00}, {Register: 2, Value: 0x05}})

	l, err = livetrace.ParseLine("A 0028 ..-10-..")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Timestamp, uint16(0x28))
	expectCommands(t, l.Commands, []chip.Command{{Register: 1, Value: 0x10}})
}

func TestLongTimestamp(t *testing.T) {
	// only the last four digits are used
	l, err := livetrace.ParseLine("  YM 1234abcd ff\t")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Timestamp, uint16(0xabcd))
	expectCommands(t, l.Commands, []chip.Command{{Register: 0, Value: 0xff}})
}

func TestAllPlaceholders(t *testing.T) {
	l, err := livetrace.ParseLine("A 0001 ..-..-..-..-..-..-..-..-..-..-..-..-..-..")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(l.Commands), 0)
}

func TestFullFrame(t *testing.T) {
	l, err := livetrace.ParseLine("A 0028 00-..-05-..-..-..-..-3e-0a-..-..-..-..-..-01-02")
	test.DemandSuccess(t, err)
	expectCommands(t, l.Commands, []chip.Command{
		{Register: chip.ToneALo, Value: 0x00},
		{Register: chip.ToneBLo, Value: 0x05},
		{Register: chip.Mixer, Value: 0x3e},
		{Register: chip.VolumeA, Value: 0x0a},
		{Register: chip.SpecialA, Value: 0x01},
		{Register: chip.SpecialB, Value: 0x02},
	})

	// the special slots never reach the wire
	p := wire.EncodeCommands(l.Timestamp, l.Commands)
	test.ExpectSlice(t, p, []byte{0x00, 0x28, 0x00, 0x00, 0x02, 0x05, 0x07, 0x3e, 0x08, 0x0a, 0xff})

	l, err = livetrace.ParseLine("A 0028 ..-..-..-..-..-..-..-..-..-..-..-..-..-..-..-..")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(l.Commands), 0)
}

func TestMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"A 0000",
		"A 0000 00-01 extra",
		"A zzzz 00",
		"A 0000 0-01",
		"A 0000 0g",
		"A 0000 00-00-00-00-00-00-00-00-00-00-00-00-00-00-00-00-00",
	} {
		_, err := livetrace.ParseLine(s)
		test.ExpectSuccess(t, errors.Is(err, livetrace.MalformedTraceLine), s)
	}
}

func TestScanner(t *testing.T) {
	sc := livetrace.NewScanner(strings.NewReader("A 0000 00\n\nbad\nA 0010 ..-01\n"))

	l, err := sc.Next()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Timestamp, uint16(0))
	test.ExpectEquality(t, sc.LineNo(), 1)

	_, err = sc.Next()
	test.ExpectSuccess(t, errors.Is(err, livetrace.MalformedTraceLine))
	test.ExpectEquality(t, sc.LineNo(), 3)

	l, err = sc.Next()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Timestamp, uint16(0x10))

	_, err = sc.Next()
	test.ExpectSuccess(t, errors.Is(err, io.EOF))
}

func TestDeltas(t *testing.T) {
	trace := strings.Join([]string{
		"A 0000 00",
		"A 0028 00",
		"A 0050 00",
		"bad line",
		"A 0060 00",
		"A ffff 00",
		"A 000f 00",
	}, "\n")

	d, err := livetrace.CountDeltas(strings.NewReader(trace))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d.Malformed, 1)
	test.ExpectEquality(t, d.Counts[0x28], 2)
	test.ExpectEquality(t, d.Counts[0x10], 2)
	test.ExpectEquality(t, d.Counts[0xff9f], 1)

	m, ok := d.Min()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, m, uint16(0x10))

	_, ok = livetrace.Deltas{}.Min()
	test.ExpectFailure(t, ok)
}
