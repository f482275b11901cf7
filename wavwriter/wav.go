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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirity, and written to disk
// when EndMixing() is called.
//
// Audio is produced by a synth.Chip driven by the packets passed to Play().
// The WavWriter therefore implements the virtualdevice.Sink interface and is
// used with a virtual device in immediate mode.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/synth"
	"github.com/jetsetilly/ymstream/wire"
)

// WavWriter implements the virtualdevice.Sink interface.
type WavWriter struct {
	filename   string
	sampleRate int
	chip       *synth.Chip
	buffer     []int

	// fractions of a sample carried over between packets
	fraction float64

	// number of timer ticks to render after the last packet
	tail int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavwriter: invalid sample rate (%d)", sampleRate)
	}

	aw := &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		chip:       synth.NewChip(synth.DefaultClock, sampleRate),
		buffer:     make([]int, 0),
		tail:       wire.DefaultInterval,
	}

	return aw, nil
}

// render audio for the number of timer ticks.
func (aw *WavWriter) render(ticks int) {
	n := float64(ticks)*float64(aw.sampleRate)/wire.TimerClock + aw.fraction
	samples := int(n)
	aw.fraction = n - float64(samples)

	buf := make([]int16, samples)
	aw.chip.Generate(buf)
	for _, s := range buf {
		aw.buffer = append(aw.buffer, int(s))
	}
}

// Play implements the virtualdevice.Sink interface.
func (aw *WavWriter) Play(p wire.Packet, ticks int) {
	// the registers set by the previous packet sound until this packet
	aw.render(ticks)
	aw.chip.Apply(p.Commands)
}

// Samples returns the number of samples rendered so far.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// EndMixing writes the buffered audio to disk.
func (aw *WavWriter) EndMixing() (rerr error) {
	aw.render(aw.tail)

	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, 16, 1, 1)

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)

	err = enc.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	return nil
}
