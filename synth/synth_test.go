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

package synth

import (
	"testing"

	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/test"
)

func TestSilence(t *testing.T) {
	c := NewChip(DefaultClock, 44100)

	buf := make([]int16, 1000)
	c.Generate(buf)
	for _, s := range buf {
		test.ExpectEquality(t, s, 0)
	}
}

func TestTone(t *testing.T) {
	c := NewChip(DefaultClock, 44100)

	// 440Hz on channel A at full volume
	c.Apply([]chip.Command{
		{Register: chip.ToneALo, Value: 284 & 0xff},
		{Register: chip.ToneAHi, Value: 284 >> 8},
		{Register: chip.Mixer, Value: 0x3e},
		{Register: chip.VolumeA, Value: 0x0f},
	})
	test.ExpectEquality(t, c.Register(chip.VolumeA), 0x0f)

	buf := make([]int16, 44100)
	c.Generate(buf)

	// count rising edges
	var edges int
	for i := 1; i < len(buf); i++ {
		if buf[i-1] <= 0 && buf[i] > 0 {
			edges++
		}
	}
	test.ExpectApproximate(t, edges, 440, 0.02)
}

func TestNoise(t *testing.T) {
	c := NewChip(DefaultClock, 44100)
	c.Apply([]chip.Command{
		{Register: chip.NoisePeriod, Value: 1},
		{Register: chip.Mixer, Value: 0x37},
		{Register: chip.VolumeA, Value: 0x0f},
	})

	buf := make([]int16, 1000)
	c.Generate(buf)

	var changes int
	for i := 1; i < len(buf); i++ {
		if buf[i] != buf[i-1] {
			changes++
		}
	}
	test.ExpectSuccess(t, changes > 100)
}

func TestRead(t *testing.T) {
	c := NewChip(DefaultClock, 44100)
	p := make([]byte, 7)
	n, err := c.Read(p)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 6)
}

func envelopeLevels(shape uint8, steps int) []uint8 {
	var e envelope
	e.restart(shape)
	levels := []uint8{e.level()}
	for range steps {
		e.step()
		levels = append(levels, e.level())
	}
	return levels
}

func TestEnvelope(t *testing.T) {
	// decay then silence
	l := envelopeLevels(0x00, 40)
	test.ExpectEquality(t, l[0], 15)
	test.ExpectEquality(t, l[15], 0)
	test.ExpectEquality(t, l[40], 0)

	// attack then silence
	l = envelopeLevels(0x04, 40)
	test.ExpectEquality(t, l[0], 0)
	test.ExpectEquality(t, l[15], 15)
	test.ExpectEquality(t, l[16], 0)
	test.ExpectEquality(t, l[40], 0)

	// repeating saw
	l = envelopeLevels(0x08, 40)
	test.ExpectEquality(t, l[15], 0)
	test.ExpectEquality(t, l[16], 15)
	test.ExpectEquality(t, l[31], 0)

	// decay and hold high
	l = envelopeLevels(0x0b, 40)
	test.ExpectEquality(t, l[15], 0)
	test.ExpectEquality(t, l[16], 15)
	test.ExpectEquality(t, l[40], 15)

	// attack and hold
	l = envelopeLevels(0x0d, 40)
	test.ExpectEquality(t, l[15], 15)
	test.ExpectEquality(t, l[40], 15)

	// triangle
	l = envelopeLevels(0x0e, 40)
	test.ExpectEquality(t, l[0], 0)
	test.ExpectEquality(t, l[15], 15)
	test.ExpectEquality(t, l[16], 15)
	test.ExpectEquality(t, l[31], 0)
	test.ExpectEquality(t, l[32], 0)
	test.ExpectEquality(t, l[33], 1)
}
