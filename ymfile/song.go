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

package ymfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/logger"
)

// the marker that follows the register data.
const endMarker = "End!"

// Song is a fully decoded YM file.
type Song struct {
	Header *Header
	Frames []chip.Frame

	// the End! marker was missing or wrong. the frames are still usable
	TrailerMissing bool
}

// Open and decode the named YM file.
func Open(filename string) (*Song, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("ymfile: %w", err)
	}
	defer f.Close()

	return Decode(bufio.NewReader(f))
}

// Decode a YM file from the reader. The header is decoded and checked before
// any register data is read.
func Decode(r io.Reader) (*Song, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	frames, err := DecodeFrames(r, h)
	if err != nil {
		return nil, err
	}

	s := &Song{
		Header: h,
		Frames: frames,
	}

	var marker [len(endMarker)]byte
	_, err = io.ReadFull(r, marker[:])
	if err != nil || string(marker[:]) != endMarker {
		logger.Logf(logger.Allow, "ymfile", "*warning* %v", TruncatedTrailer)
		s.TrailerMissing = true
	}

	return s, nil
}

// DecodeFrames reads the sixteen register columns that follow the header and
// transposes them into one Frame per playback tick, such that:
//
//	frames[t][r] == column[r][t]
func DecodeFrames(r io.Reader, h *Header) ([]chip.Frame, error) {
	if !h.Interleaved() {
		return nil, fmt.Errorf("ymfile: %w: only interleaved data is supported", UnsupportedFormat)
	}

	n := int(h.Frames)

	// the frame count comes from the file. nothing is allocated for the
	// frames until the first column has been read in full
	column, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil || len(column) < n {
		return nil, fmt.Errorf("ymfile: register 0 data: %w", io.ErrUnexpectedEOF)
	}

	frames := make([]chip.Frame, n)

	for reg := range chip.FrameSize {
		if reg > 0 {
			_, err := io.ReadFull(r, column)
			if err != nil {
				return nil, fmt.Errorf("ymfile: register %d data: %w", reg, io.ErrUnexpectedEOF)
			}
		}
		for t := range n {
			frames[t][reg] = column[t]
		}
	}

	return frames, nil
}

// Encode writes the song as an interleaved YM file. The header frame count is
// taken from the number of frames in the song and the End! marker is always
// written.
func (s *Song) Encode(w io.Writer) error {
	h := *s.Header
	h.Frames = uint32(len(s.Frames))
	h.Attributes |= AttrInterleaved

	err := h.Encode(w)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	for reg := range chip.FrameSize {
		for t := range s.Frames {
			b.WriteByte(s.Frames[t][reg])
		}
	}
	b.WriteString(endMarker)

	_, err = w.Write(b.Bytes())
	if err != nil {
		return fmt.Errorf("ymfile: %w", err)
	}
	return nil
}

// Duration returns the playing time of the song in minutes and seconds.
func (s *Song) Duration() (int, int) {
	rate := int(s.Header.FrameRate)
	if rate == 0 {
		return 0, 0
	}
	secs := len(s.Frames) / rate
	return secs / 60, secs % 60
}
