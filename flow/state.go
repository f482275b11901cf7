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

package flow

// State records what the Controller will do on the next call to Step().
type State int

// List of valid State values.
const (
	Idle State = iota
	AwaitCreditHi
	AwaitCreditLo
	Transmit
	AwaitAck
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitCreditHi:
		return "await credit hi"
	case AwaitCreditLo:
		return "await credit lo"
	case Transmit:
		return "transmit"
	case AwaitAck:
		return "await ack"
	case Done:
		return "done"
	}
	return "unknown"
}
