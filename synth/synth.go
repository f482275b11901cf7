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

// Package synth is a simple software model of the AY-3-8910/YM2149 sound
// chip. It is used to hear or record a stream without the playback device.
//
// The model has three square wave tone generators, a 17 bit noise generator,
// the mixer, fixed channel volumes and the sixteen level envelope generator.
// Output is a single channel of signed 16 bit samples.
package synth

import (
	"encoding/binary"
	"sync"

	"github.com/jetsetilly/ymstream/chip"
)

// DefaultClock is the clock of the YM2149 in the Atari ST.
const DefaultClock = 2000000

// relative amplitude of each volume level.
var amplitude = [16]float64{
	0.0, 0.0137, 0.0205, 0.0291, 0.0423, 0.0618, 0.0847, 0.1369,
	0.1691, 0.2647, 0.3527, 0.4499, 0.5704, 0.6873, 0.8482, 1.0,
}

// headroom when mixing three channels at full volume.
const gain = 0.9 * 32767 / 3

// Chip is the sound chip model. It is safe to write registers and generate
// samples from different goroutines.
type Chip struct {
	crit sync.Mutex

	regs [chip.NumRegisters]uint8

	// chip clock ticks per output sample
	ticksPerSample float64

	tone      [3]generator
	noise     generator
	noiseLFSR uint32
	envelope  envelope

	// dc blocking filter
	prevIn  float64
	prevOut float64
}

type generator struct {
	counter float64
	output  bool
}

// NewChip is the preferred method of initialisation for the Chip type.
func NewChip(clock int, sampleRate int) *Chip {
	if clock <= 0 {
		clock = DefaultClock
	}
	c := &Chip{
		ticksPerSample: float64(clock) / float64(sampleRate),
		noiseLFSR:      1,
	}

	// all channels disabled in the mixer
	c.regs[chip.Mixer] = 0x3f
	return c
}

// Register returns the current value of a register.
func (c *Chip) Register(r chip.Register) uint8 {
	c.crit.Lock()
	defer c.crit.Unlock()
	if int(r) >= len(c.regs) {
		return 0
	}
	return c.regs[r]
}

// Apply writes a list of commands to the registers. Commands for registers
// that do not exist are ignored.
func (c *Chip) Apply(cmds []chip.Command) {
	c.crit.Lock()
	defer c.crit.Unlock()
	for _, cmd := range cmds {
		c.write(cmd.Register, cmd.Value)
	}
}

// Write a value to a single register.
func (c *Chip) Write(r chip.Register, v uint8) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.write(r, v)
}

func (c *Chip) write(r chip.Register, v uint8) {
	if int(r) >= len(c.regs) {
		return
	}
	c.regs[r] = v
	if r == chip.EnvShape {
		c.envelope.restart(v)
	}
}

func (c *Chip) tonePeriod(ch int) float64 {
	p := uint16(c.regs[ch*2]) | uint16(c.regs[ch*2+1]&0x0f)<<8
	if p == 0 {
		p = 1
	}
	return float64(p)
}

func (c *Chip) noisePeriod() float64 {
	p := c.regs[chip.NoisePeriod] & 0x1f
	if p == 0 {
		p = 1
	}
	return float64(p)
}

func (c *Chip) envelopePeriod() float64 {
	p := uint16(c.regs[chip.EnvPeriodLo]) | uint16(c.regs[chip.EnvPeriodHi])<<8
	if p == 0 {
		p = 1
	}
	return float64(p)
}

// generate the next sample. must be called with the critical section locked.
func (c *Chip) sample() int16 {
	// tone generators toggle every period ticks of the clock divided by 8
	for ch := range c.tone {
		t := &c.tone[ch]
		period := c.tonePeriod(ch)
		t.counter += c.ticksPerSample / 8
		for t.counter >= period {
			t.counter -= period
			t.output = !t.output
		}
	}

	// noise generator is shifted every period ticks of the clock divided by 16
	period := c.noisePeriod()
	c.noise.counter += c.ticksPerSample / 16
	for c.noise.counter >= period {
		c.noise.counter -= period
		bit := (c.noiseLFSR ^ (c.noiseLFSR >> 3)) & 1
		c.noiseLFSR = (c.noiseLFSR >> 1) | (bit << 16)
		c.noise.output = c.noiseLFSR&1 == 1
	}

	// envelope steps every period ticks of the clock divided by 256
	c.envelope.counter += c.ticksPerSample / 256
	period = c.envelopePeriod()
	for c.envelope.counter >= period {
		c.envelope.counter -= period
		c.envelope.step()
	}

	mixer := c.regs[chip.Mixer]
	var mix float64
	for ch := range c.tone {
		toneOff := mixer&(1<<ch) != 0
		noiseOff := mixer&(8<<ch) != 0
		if (c.tone[ch].output || toneOff) && (c.noise.output || noiseOff) {
			vol := c.regs[int(chip.VolumeA)+ch]
			level := vol & 0x0f
			if vol&0x10 != 0 {
				level = c.envelope.level()
			}
			mix += amplitude[level]
		}
	}

	out := mix - c.prevIn + 0.995*c.prevOut
	c.prevIn = mix
	c.prevOut = out

	return int16(out * gain)
}

// Generate fills buf with samples.
func (c *Chip) Generate(buf []int16) {
	c.crit.Lock()
	defer c.crit.Unlock()
	for i := range buf {
		buf[i] = c.sample()
	}
}

// Read implements the io.Reader interface. Samples are signed 16 bit little
// endian. A Chip never runs out of samples so Read() always fills as much of
// p as it can and never returns an error.
func (c *Chip) Read(p []byte) (int, error) {
	c.crit.Lock()
	defer c.crit.Unlock()
	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		binary.LittleEndian.PutUint16(p[i:], uint16(c.sample()))
	}
	return n, nil
}
