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

// TimerClock is the frequency of the device timer that timestamps are
// measured against. 16MHz prescaled by eight.
const TimerClock = 2000000

// DefaultInterval is the timestamp increment for a 50Hz tune.
const DefaultInterval = TimerClock / 50

// Clock returns the timestamp for the next playback tick.
type Clock interface {
	// the captured value is the timestamp recorded by the source, if it has
	// one. clocks are free to ignore it
	Tick(captured uint16) uint16
}

// FixedInterval is a Clock that starts at zero and advances by a fixed number
// of timer ticks every playback tick. The timestamp wraps modulo 65536.
type FixedInterval struct {
	Interval uint16
	next     uint16
}

// NewFixedInterval is the preferred method of initialisation for the
// FixedInterval type.
func NewFixedInterval(interval uint16) *FixedInterval {
	return &FixedInterval{Interval: interval}
}

// Tick implements the Clock interface. The captured value is ignored.
func (c *FixedInterval) Tick(_ uint16) uint16 {
	ts := c.next
	c.next += c.Interval
	return ts
}

// Captured is a Clock that passes through the timestamp recorded by the
// source.
type Captured struct{}

// Tick implements the Clock interface.
func (Captured) Tick(captured uint16) uint16 {
	return captured
}

// IntervalForRate returns the number of timer ticks in one frame at the
// given frame rate. A rate of zero is treated as 50Hz. Rates too slow to be
// represented are clamped to the longest possible interval.
func IntervalForRate(rate uint16) uint16 {
	if rate == 0 {
		return DefaultInterval
	}
	i := TimerClock / int(rate)
	if i > 0xffff {
		return 0xffff
	}
	return uint16(i)
}
