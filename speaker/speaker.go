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

// Package speaker plays a stream on the host's sound card. Packets are
// applied to a synth.Chip as they are played by a virtual device in real
// time and the sound card pulls samples from the chip as it needs them.
//
// Only one Speaker can be created in the lifetime of the program.
package speaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/synth"
	"github.com/jetsetilly/ymstream/wire"
)

// latency between a register write and it being heard.
const bufferSize = 50 * time.Millisecond

// Speaker implements the virtualdevice.Sink interface.
type Speaker struct {
	chip *synth.Chip

	crit    sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// New is the preferred method of initialisation for the Speaker type.
func New(sampleRate int) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("speaker: %w", err)
	}
	<-ready

	spk := newSpeaker(sampleRate)
	spk.ctx = ctx
	spk.player = ctx.NewPlayer(spk.chip)

	logger.Logf(logger.Allow, "speaker", "sound card opened at %dHz", sampleRate)

	return spk, nil
}

func newSpeaker(sampleRate int) *Speaker {
	return &Speaker{
		chip: synth.NewChip(synth.DefaultClock, sampleRate),
	}
}

// Play implements the virtualdevice.Sink interface. The sound card is started
// when the first packet is played.
func (spk *Speaker) Play(p wire.Packet, _ int) {
	spk.chip.Apply(p.Commands)

	spk.crit.Lock()
	defer spk.crit.Unlock()
	if !spk.started && spk.player != nil {
		spk.player.Play()
		spk.started = true
	}
}

// Close silences the chip and stops the sound card.
func (spk *Speaker) Close() error {
	spk.chip.Apply(chip.Mute)

	spk.crit.Lock()
	defer spk.crit.Unlock()

	if spk.player == nil {
		return nil
	}

	err := spk.player.Close()
	spk.player = nil
	spk.started = false
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}

	return nil
}
