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

// Package flow implements the host side of the credit based flow control
// between the host and the playback device.
//
// The device has a small buffer. It tells the host how many bytes it can
// accept (the credit) and the host never sends more than that. How the credit
// is reported and whether the host must propose the chunk size and wait for
// an acknowledgement depends on the firmware running on the device. These
// variations are described by the Dialect type.
//
// The Controller type moves bytes from a queue.Queue to a
// transport.Transport. It is driven one state at a time by Step() or until
// the queue has been drained by Run().
package flow
