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

package chip

import "fmt"

// Register is the index of a chip register.
type Register = uint8

// List of chip registers.
const (
	ToneALo Register = iota
	ToneAHi
	ToneBLo
	ToneBHi
	ToneCLo
	ToneCHi
	NoisePeriod
	Mixer
	VolumeA
	VolumeB
	VolumeC
	EnvPeriodLo
	EnvPeriodHi
	EnvShape

	// the two extra slots in a YM frame. these are not chip registers
	SpecialA
	SpecialB
)

// NumRegisters is the number of real chip registers.
const NumRegisters = 14

// FrameSize is the number of register slots in a Frame.
const FrameSize = 16

// StopByte terminates the list of register writes in a wire packet. It is
// also the value of EnvShape in a frame that means the envelope shape should
// not be rewritten. Writing to EnvShape restarts the envelope so the YM
// format uses this value to indicate no change.
const StopByte = 0xff

// RegisterNames is the list of names for each register slot, indexed by
// Register.
var RegisterNames = [FrameSize]string{
	"ToneA.lo", "ToneA.hi",
	"ToneB.lo", "ToneB.hi",
	"ToneC.lo", "ToneC.hi",
	"Noise", "Mixer",
	"VolA", "VolB", "VolC",
	"Env.lo", "Env.hi", "EnvShape",
	"SpecialA", "SpecialB",
}

// Frame is a snapshot of the register slots for a single playback tick.
type Frame [FrameSize]uint8

// Command is a request to write Value to a chip register.
type Command struct {
	Register Register
	Value    uint8
}

func (c Command) String() string {
	if int(c.Register) < len(RegisterNames) {
		return fmt.Sprintf("%s=%#02x", RegisterNames[c.Register], c.Value)
	}
	return fmt.Sprintf("R%d=%#02x", c.Register, c.Value)
}

// Valid returns false if the command would not be accepted by the device.
func (c Command) Valid() bool {
	return c.Register < NumRegisters
}

// Commands returns the register writes required to bring the chip into the
// state described by the frame. Registers below EnvShape are always written.
// EnvShape is written only if it is not StopByte. The special slots are never
// written.
func (f Frame) Commands() []Command {
	cmds := make([]Command, 0, NumRegisters)
	for r := ToneALo; r < EnvShape; r++ {
		cmds = append(cmds, Command{Register: r, Value: f[r]})
	}
	if f[EnvShape] != StopByte {
		cmds = append(cmds, Command{Register: EnvShape, Value: f[EnvShape]})
	}
	return cmds
}

// Mute is the list of commands that silence the chip: the low byte of tone A
// and the volume of each channel are set to zero.
var Mute = []Command{
	{Register: ToneALo, Value: 0},
	{Register: VolumeA, Value: 0},
	{Register: VolumeB, Value: 0},
	{Register: VolumeC, Value: 0},
}
