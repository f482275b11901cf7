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

// shape bits of the envelope shape register
const (
	envHold      = 0x01
	envAlternate = 0x02
	envAttack    = 0x04
	envContinue  = 0x08
)

type envelope struct {
	counter float64

	shape   uint8
	pos     int
	rising  bool
	holding bool
}

// restart the envelope with a new shape. writing the shape register always
// restarts the envelope even if the shape has not changed.
func (e *envelope) restart(shape uint8) {
	e.shape = shape & 0x0f
	e.pos = 0
	e.counter = 0
	e.rising = e.shape&envAttack != 0
	e.holding = false
}

func (e *envelope) level() uint8 {
	if e.rising {
		return uint8(e.pos)
	}
	return uint8(15 - e.pos)
}

func (e *envelope) step() {
	if e.holding {
		return
	}

	e.pos++
	if e.pos <= 15 {
		return
	}

	// end of the cycle
	e.pos = 15
	switch {
	case e.shape&envContinue == 0:
		e.rising = false
		e.holding = true
	case e.shape&envHold != 0:
		if e.shape&envAlternate != 0 {
			e.rising = !e.rising
		}
		e.holding = true
	case e.shape&envAlternate != 0:
		e.rising = !e.rising
		e.pos = 0
	default:
		e.pos = 0
	}
}
