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

// Package wire encodes register writes into the command stream understood by
// the playback device, and decodes that stream again.
//
// The stream is a sequence of packets, one per playback tick:
//
//	[tsHi][tsLo] ([register][value])* [0xff]
//
// The timestamp is the value of the device's 2MHz timer at which the
// register writes should be played. It is sixteen bits wide and wraps.
// Register indices are always below chip.NumRegisters so the stop byte can
// never be mistaken for a register index.
//
// At the end of a stream the fixed mute trailer silences the chip. The
// trailer has no timestamp of its own; the first register write (tone A low
// byte set to zero) is read by the device as a zero timestamp.
package wire
