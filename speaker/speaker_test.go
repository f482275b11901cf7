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

package speaker

import (
	"testing"

	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/wire"
)

// the sound card is not opened in tests. the speaker without a player still
// drives the chip
func TestPlay(t *testing.T) {
	spk := newSpeaker(44100)

	spk.Play(wire.Packet{Commands: []chip.Command{
		{Register: chip.VolumeB, Value: 0x0c},
		{Register: chip.Mixer, Value: 0x3d},
	}}, 0)
	test.ExpectEquality(t, spk.chip.Register(chip.VolumeB), 0x0c)
	test.ExpectEquality(t, spk.chip.Register(chip.Mixer), 0x3d)
	test.ExpectFailure(t, spk.started)

	test.ExpectSuccess(t, spk.Close())
	test.ExpectEquality(t, spk.chip.Register(chip.VolumeB), 0)
}
