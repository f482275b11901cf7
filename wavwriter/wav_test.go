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

package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/wavwriter"
	"github.com/jetsetilly/ymstream/wire"
)

func TestWavWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(filename, 44100)
	test.DemandSuccess(t, err)

	tone := []chip.Command{
		{Register: chip.ToneALo, Value: 0x1c},
		{Register: chip.ToneAHi, Value: 0x01},
		{Register: chip.Mixer, Value: 0x3e},
		{Register: chip.VolumeA, Value: 0x0f},
	}

	// ten frames at 50Hz
	for i := range 10 {
		ticks := wire.DefaultInterval
		if i == 0 {
			ticks = 0
		}
		aw.Play(wire.Packet{Timestamp: uint16(i * wire.DefaultInterval), Commands: tone}, ticks)
	}
	test.ExpectEquality(t, aw.Samples(), 9*882)

	test.DemandSuccess(t, aw.EndMixing())

	f, err := os.Open(filename)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	test.DemandSuccess(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, int(dec.SampleRate), 44100)
	test.ExpectEquality(t, int(dec.NumChans), 1)
	test.ExpectEquality(t, int(dec.BitDepth), 16)
	test.ExpectEquality(t, len(buf.Data), 10*882)

	// the tone is audible
	var loud bool
	for _, s := range buf.Data {
		if s > 1000 {
			loud = true
			break
		}
	}
	test.ExpectSuccess(t, loud)
}

func TestInvalidSampleRate(t *testing.T) {
	_, err := wavwriter.New(filepath.Join(t.TempDir(), "out.wav"), 0)
	test.ExpectFailure(t, err)
}
