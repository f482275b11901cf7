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

// Package virtualdevice emulates the playback device. The Device type
// implements the transport.Transport interface so that it can be used in
// place of a serial port.
//
// The emulation follows the device firmware. Incoming bytes are stored in a
// 1024 byte circular buffer. Free space in the buffer is reported to the host
// as credit in the form required by the firmware dialect. Packets are taken
// from the buffer and played when the device's 2MHz timer reaches the
// packet's timestamp.
//
// Played packets are passed to a Sink. In immediate mode packets are played
// as soon as they arrive and the Sink is told how many timer ticks would have
// passed on a real device. In real time mode the Device waits for those ticks
// to pass before playing the packet.
//
// The host must follow the handshake exactly. A write that exceeds the credit
// results in ErrOverrun and a handshake out of sequence results in
// ErrProtocol. Both errors are permanent.
package virtualdevice
