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

// Package chip describes the register model of the AY-3-8910/YM2149 sound
// chip as it is addressed by the streaming protocol.
//
// A Frame is a snapshot of all sixteen register slots for a single playback
// tick. Only the first fourteen are real chip registers. The last two are
// used by the YM file format for digi-drum and timer-synth effects and are
// never sent to the device.
//
// A Command is a single register write. The register index of a Command is
// always below StopByte, which is how the wire format can use StopByte to
// terminate a list of commands.
package chip
