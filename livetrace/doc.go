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

// Package livetrace parses the textual register-change log produced by a
// running emulator. Each line describes one playback tick:
//
//	<label> <hex timestamp> <reg0>-<reg1>-...-<regN>
//
// Each register field is either two hex digits or the placeholder "..",
// meaning the register has not changed since the previous tick. Only changed
// registers are returned as commands.
//
// The timestamp is the value of the emulated machine's timer at the moment
// the registers were written. Only the low sixteen bits are kept, which is
// all the wire format can carry.
package livetrace
