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
	"errors"
	"io"

	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/livetrace"
	"github.com/jetsetilly/ymstream/logger"
)

// FrameSource produces one packet for every frame of a decoded song.
type FrameSource struct {
	frames []chip.Frame
	clock  Clock
	pos    int

	// replay from loopFrame this many additional times
	loopFrame int
	loops     int
}

// NewFrameSource is the preferred method of initialisation for the
// FrameSource type.
func NewFrameSource(frames []chip.Frame, clock Clock) *FrameSource {
	return &FrameSource{
		frames: frames,
		clock:  clock,
	}
}

// SetLoops arranges for the frames from loopFrame onwards to be played an
// additional number of times. A loopFrame outside the range of frames is
// treated as zero.
func (s *FrameSource) SetLoops(loopFrame int, loops int) {
	if loopFrame < 0 || loopFrame >= len(s.frames) {
		loopFrame = 0
	}
	s.loopFrame = loopFrame
	s.loops = loops
}

// Next returns the packet for the next frame. Returns io.EOF when there are
// no more frames.
func (s *FrameSource) Next() ([]byte, error) {
	if s.pos >= len(s.frames) {
		if s.loops <= 0 || len(s.frames) == 0 {
			return nil, io.EOF
		}
		s.loops--
		s.pos = s.loopFrame
	}

	f := s.frames[s.pos]
	s.pos++
	return EncodeFrame(s.clock.Tick(0), f), nil
}

// TraceSource produces one packet for every line of a live trace.
type TraceSource struct {
	scanner *livetrace.Scanner
	clock   Clock

	// number of lines skipped because they could not be parsed
	Skipped int

	// only the first few skipped lines are logged
	logPerm *logger.Limited
}

// the number of skipped trace lines that will be logged
const maxSkippedLog = 10

// NewTraceSource is the preferred method of initialisation for the
// TraceSource type.
func NewTraceSource(r io.Reader, clock Clock) *TraceSource {
	return &TraceSource{
		scanner: livetrace.NewScanner(r),
		clock:   clock,
		logPerm: logger.NewLimited(maxSkippedLog),
	}
}

// Next returns the packet for the next trace line. Returns io.EOF at the end
// of the trace.
func (s *TraceSource) Next() ([]byte, error) {
	for {
		l, err := s.scanner.Next()
		if err != nil {
			// a malformed line is a problem with the emulator that produced
			// the trace, not a reason to stop playback. skip the line
			if errors.Is(err, livetrace.MalformedTraceLine) {
				s.Skipped++
				logger.Logf(s.logPerm, "wire", "line %d: %v", s.scanner.LineNo(), err)
				continue
			}
			if errors.Is(err, io.EOF) && s.logPerm.Refused() > 0 {
				logger.Logf(logger.Allow, "wire", "%d more malformed lines not logged", s.logPerm.Refused())
			}
			return nil, err
		}
		return EncodeCommands(s.clock.Tick(l.Timestamp), l.Commands), nil
	}
}
