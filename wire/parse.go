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

import (
	"fmt"

	"github.com/jetsetilly/ymstream/chip"
)

// Packet is a decoded wire packet.
type Packet struct {
	Timestamp uint16
	Commands  []chip.Command
}

func (p Packet) String() string {
	return fmt.Sprintf("%04x %v", p.Timestamp, p.Commands)
}

// ParserState records how the next byte will be interpreted by the Parser.
type ParserState int

// List of valid ParserState values.
const (
	ParseTimestampHi ParserState = iota
	ParseTimestampLo
	ParseRegister
	ParseValue
	ParseResync
)

func (s ParserState) String() string {
	switch s {
	case ParseTimestampHi:
		return "timestamp hi"
	case ParseTimestampLo:
		return "timestamp lo"
	case ParseRegister:
		return "register"
	case ParseValue:
		return "value"
	case ParseResync:
		return "resync"
	}
	return "unknown"
}

// Parser reassembles packets from a byte stream that may be delivered in
// arbitrarily sized pieces. It implements the io.Writer interface.
//
// If a byte in the register position is neither a register index nor the
// stop byte the current packet is discarded and the parser skips to the next
// stop byte.
type Parser struct {
	state   ParserState
	current Packet

	// called for every complete packet
	onPacket func(Packet)

	// number of packets discarded because of a bad register index
	Discarded int
}

// NewParser is the preferred method of initialisation for the Parser type.
func NewParser(onPacket func(Packet)) *Parser {
	return &Parser{
		onPacket: onPacket,
	}
}

// State returns the current parser state.
func (p *Parser) State() ParserState {
	return p.state
}

// Write implements the io.Writer interface. It never returns an error.
func (p *Parser) Write(b []byte) (int, error) {
	for _, v := range b {
		p.step(v)
	}
	return len(b), nil
}

func (p *Parser) step(v uint8) {
	switch p.state {
	case ParseTimestampHi:
		p.current = Packet{Timestamp: uint16(v) << 8}
		p.state = ParseTimestampLo

	case ParseTimestampLo:
		p.current.Timestamp |= uint16(v)
		p.state = ParseRegister

	case ParseRegister:
		switch {
		case v == chip.StopByte:
			if p.onPacket != nil {
				p.onPacket(p.current)
			}
			p.state = ParseTimestampHi
		case v < chip.NumRegisters:
			p.current.Commands = append(p.current.Commands, chip.Command{Register: v})
			p.state = ParseValue
		default:
			p.Discarded++
			p.state = ParseResync
		}

	case ParseValue:
		p.current.Commands[len(p.current.Commands)-1].Value = v
		p.state = ParseRegister

	case ParseResync:
		if v == chip.StopByte {
			p.state = ParseTimestampHi
		}
	}
}
