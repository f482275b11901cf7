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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// UnsupportedFormat is wrapped by any error caused by a file that is
// valid but uses a feature that cannot be streamed.
var UnsupportedFormat = errors.New("unsupported format")

// TruncatedTrailer is the warning logged when the "End!" marker is missing.
var TruncatedTrailer = errors.New("End! marker not found after frames")

// the attribute bits of the Header.Attributes field
const (
	AttrInterleaved = 1 << iota
	AttrDrumSigned
	AttrDrum4Bits
	AttrTimeControl
	AttrLoopMode
)

// the check string found in all YM5 and YM6 files.
const checkString = "LeOnArD!"

// size of the fixed part of the header
const headerSize = 34

// Header is the decoded header of a YM file.
type Header struct {
	ID         [4]byte
	Check      [8]byte
	Frames     uint32
	Attributes uint32
	DigiDrums  uint16
	ChipClock  uint32
	FrameRate  uint16
	LoopFrame  uint32
	ExtraData  uint16

	SongName string
	Author   string
	Comment  string
}

// Interleaved returns true if the register data is stored in columns.
func (h *Header) Interleaved() bool {
	return h.Attributes&AttrInterleaved == AttrInterleaved
}

func (h *Header) String() string {
	return fmt.Sprintf("%s %q by %q (%d frames @ %dHz)", h.ID[:], h.SongName, h.Author, h.Frames, h.FrameRate)
}

// Fields returns the header as a list of name/value pairs in file order.
// Useful for printing.
func (h *Header) Fields() [][2]string {
	return [][2]string{
		{"id", string(h.ID[:])},
		{"check_string", string(h.Check[:])},
		{"nb_frames", fmt.Sprintf("%d", h.Frames)},
		{"song_attributes", fmt.Sprintf("%#x", h.Attributes)},
		{"nb_digidrums", fmt.Sprintf("%d", h.DigiDrums)},
		{"chip_clock", fmt.Sprintf("%d", h.ChipClock)},
		{"frames_rate", fmt.Sprintf("%d", h.FrameRate)},
		{"loop_frame", fmt.Sprintf("%d", h.LoopFrame)},
		{"extra_data", fmt.Sprintf("%d", h.ExtraData)},
		{"song_name", h.SongName},
		{"author_name", h.Author},
		{"song_comment", h.Comment},
	}
}

// the fixed part of the header as it is laid out in the file
type rawHeader struct {
	ID         [4]byte
	Check      [8]byte
	Frames     uint32
	Attributes uint32
	DigiDrums  uint16
	ChipClock  uint32
	FrameRate  uint16
	LoopFrame  uint32
	ExtraData  uint16
}

// DecodeHeader reads the header of a YM file. On success the reader is
// positioned at the start of the register data.
//
// The returned error wraps UnsupportedFormat if the file cannot be streamed.
// In that case no register data will have been read.
func DecodeHeader(r io.Reader) (*Header, error) {
	var raw rawHeader

	err := binary.Read(r, binary.BigEndian, &raw)
	if err != nil {
		return nil, fmt.Errorf("ymfile: header: %w", err)
	}

	// lha archives have the compression method at offset two
	if bytes.Equal(raw.ID[2:], []byte("-l")) && raw.Check[2] == '-' {
		return nil, fmt.Errorf("ymfile: %w: file is LHA compressed (%s%s)", UnsupportedFormat, raw.ID[2:], raw.Check[:3])
	}

	// YM2! to YM4! have no header beyond the ID and a different register
	// layout. they cannot be read with this header
	switch string(raw.ID[:]) {
	case "YM5!", "YM6!":
	default:
		return nil, fmt.Errorf("ymfile: %w: version %q", UnsupportedFormat, raw.ID[:])
	}

	if string(raw.Check[:]) != checkString {
		return nil, fmt.Errorf("ymfile: %w: check string %q", UnsupportedFormat, raw.Check[:])
	}

	if raw.DigiDrums != 0 {
		return nil, fmt.Errorf("ymfile: %w: digidrums are not supported", UnsupportedFormat)
	}

	if raw.Attributes&AttrInterleaved != AttrInterleaved {
		return nil, fmt.Errorf("ymfile: %w: only interleaved data is supported", UnsupportedFormat)
	}

	h := &Header{
		ID:         raw.ID,
		Check:      raw.Check,
		Frames:     raw.Frames,
		Attributes: raw.Attributes,
		DigiDrums:  raw.DigiDrums,
		ChipClock:  raw.ChipClock,
		FrameRate:  raw.FrameRate,
		LoopFrame:  raw.LoopFrame,
		ExtraData:  raw.ExtraData,
	}

	// extra data is reserved for future use. skip it
	if h.ExtraData > 0 {
		_, err = io.CopyN(io.Discard, r, int64(h.ExtraData))
		if err != nil {
			return nil, fmt.Errorf("ymfile: extra data: %w", err)
		}
	}

	h.SongName, err = readString(r)
	if err != nil {
		return nil, fmt.Errorf("ymfile: song name: %w", err)
	}
	h.Author, err = readString(r)
	if err != nil {
		return nil, fmt.Errorf("ymfile: author: %w", err)
	}
	h.Comment, err = readString(r)
	if err != nil {
		return nil, fmt.Errorf("ymfile: comment: %w", err)
	}

	return h, nil
}

// readString reads a NUL terminated string one byte at a time so that the
// reader is never advanced past the terminator.
func readString(r io.Reader) (string, error) {
	var s bytes.Buffer
	var b [1]byte
	for {
		_, err := io.ReadFull(r, b[:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b[0] == 0x00 {
			return s.String(), nil
		}
		s.WriteByte(b[0])
	}
}

// Encode writes the header in the YM file layout. Extra data, if any, is
// written as zero bytes.
func (h *Header) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	raw := rawHeader{
		ID:         h.ID,
		Check:      h.Check,
		Frames:     h.Frames,
		Attributes: h.Attributes,
		DigiDrums:  h.DigiDrums,
		ChipClock:  h.ChipClock,
		FrameRate:  h.FrameRate,
		LoopFrame:  h.LoopFrame,
		ExtraData:  h.ExtraData,
	}
	err := binary.Write(bw, binary.BigEndian, &raw)
	if err != nil {
		return fmt.Errorf("ymfile: header: %w", err)
	}

	_, _ = bw.Write(make([]byte, h.ExtraData))

	for _, s := range []string{h.SongName, h.Author, h.Comment} {
		_, _ = bw.WriteString(s)
		_ = bw.WriteByte(0x00)
	}

	err = bw.Flush()
	if err != nil {
		return fmt.Errorf("ymfile: header: %w", err)
	}
	return nil
}

// NewHeader returns a header for a YM6 file with the interleaved attribute
// set and the supplied number of frames. Other fields have sensible defaults
// for an Atari ST tune.
func NewHeader(frames uint32) *Header {
	h := &Header{
		Frames:     frames,
		Attributes: AttrInterleaved,
		ChipClock:  2000000,
		FrameRate:  50,
	}
	copy(h.ID[:], "YM6!")
	copy(h.Check[:], checkString)
	return h
}
