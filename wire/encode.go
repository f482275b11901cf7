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

package wire

import (
	"github.com/jetsetilly/ymstream/chip"
)

// AppendPacket appends a packet with the timestamp and register writes to
// dst and returns the extended slice. Commands that do not address a real
// chip register are not written.
func AppendPacket(dst []byte, ts uint16, cmds []chip.Command) []byte {
	dst = append(dst, uint8(ts>>8), uint8(ts))
	for _, c := range cmds {
		if !c.Valid() {
			continue
		}
		dst = append(dst, c.Register, c.Value)
	}
	return append(dst, chip.StopByte)
}

// EncodeCommands returns a packet containing the register writes.
func EncodeCommands(ts uint16, cmds []chip.Command) []byte {
	return AppendPacket(make([]byte, 0, 3+len(cmds)*2), ts, cmds)
}

// EncodeFrame returns a packet for the frame. See chip.Frame.Commands() for
// which registers are written.
func EncodeFrame(ts uint16, f chip.Frame) []byte {
	return EncodeCommands(ts, f.Commands())
}

// MuteTrailer returns the bytes that end a stream and silence the chip.
func MuteTrailer() []byte {
	b := make([]byte, 0, len(chip.Mute)*2+1)
	for _, c := range chip.Mute {
		b = append(b, c.Register, c.Value)
	}
	return append(b, chip.StopByte)
}
