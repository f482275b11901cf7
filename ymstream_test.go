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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
	"github.com/jetsetilly/ymstream/chip"
	"github.com/jetsetilly/ymstream/modalflag"
	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/ymfile"
)

// writeSong creates a YM file of the given number of frames in the current
// directory. a quiet tone plays on channel A.
func writeSong(t *testing.T, filename string, frames int) {
	t.Helper()

	s := &ymfile.Song{
		Header: ymfile.NewHeader(uint32(frames)),
		Frames: make([]chip.Frame, frames),
	}
	s.Header.SongName = "Launch Test"
	s.Header.Author = "ymstream"
	for i := range s.Frames {
		s.Frames[i][chip.ToneALo] = 0x1c
		s.Frames[i][chip.ToneAHi] = 0x01
		s.Frames[i][chip.Mixer] = 0x3e
		s.Frames[i][chip.VolumeA] = 0x0a
		s.Frames[i][chip.EnvShape] = chip.StopByte
	}

	f, err := os.Create(filename)
	test.DemandSuccess(t, err)
	defer f.Close()
	test.DemandSuccess(t, s.Encode(f))
}

func run(t *testing.T, stdin string, args ...string) (int, string) {
	t.Helper()
	var out strings.Builder
	md := &modalflag.Modes{Output: &out}
	ret := launch(md, strings.NewReader(stdin), args)
	return ret, out.String()
}

func TestInfo(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSong(t, "song.ym", 150)

	ret, out := run(t, "", "INFO", "song.ym")
	test.ExpectEquality(t, ret, 0)
	test.ExpectSuccess(t, strings.Contains(out, "Launch Test"))
	test.ExpectSuccess(t, strings.Contains(out, "nb_frames:   150\n"))
	test.ExpectSuccess(t, strings.Contains(out, "duration:    0:03\n"))
}

func TestUnsupported(t *testing.T) {
	t.Chdir(t.TempDir())
	data := append([]byte("\x24\x00-lh5-"), make([]byte, 64)...)
	test.DemandSuccess(t, os.WriteFile("song.ym", data, 0o644))

	ret, out := run(t, "", "INFO", "song.ym")
	test.ExpectEquality(t, ret, exitRuntime)
	test.ExpectSuccess(t, strings.HasPrefix(out, "* error in INFO mode: "))
	test.ExpectSuccess(t, strings.Contains(out, "LHA compressed"))
}

func TestArguments(t *testing.T) {
	t.Chdir(t.TempDir())

	ret, _ := run(t, "", "INFO")
	test.ExpectEquality(t, ret, exitArguments)

	ret, _ = run(t, "", "PLAY", "/dev/null")
	test.ExpectEquality(t, ret, exitArguments)

	ret, _ = run(t, "", "PLAY", "-firmware", "turbo", "/dev/null", "song.ym")
	test.ExpectEquality(t, ret, exitArguments)

	ret, _ = run(t, "", "RENDER", "-prefs", "stream.highWater::0", "song.ym", "out.wav")
	test.ExpectEquality(t, ret, exitRuntime)

	ret, out := run(t, "", "LIVE", "-help")
	test.ExpectEquality(t, ret, 0)
	test.ExpectSuccess(t, strings.Contains(out, "-firmware"))
}

func TestRender(t *testing.T) {
	t.Chdir(t.TempDir())
	writeSong(t, "song.ym", 50)

	for _, firmware := range []string{"slow", "fast", "byte"} {
		out := filepath.Join(t.TempDir(), "out.wav")

		ret, s := run(t, "", "RENDER", "-firmware", firmware, "song.ym", out)
		test.ExpectEquality(t, ret, 0, firmware)
		test.ExpectSuccess(t, strings.HasPrefix(s, "rendered "), firmware)

		f, err := os.Open(out)
		test.DemandSuccess(t, err)
		d := wav.NewDecoder(f)
		buf, err := d.FullPCMBuffer()
		f.Close()
		test.DemandSuccess(t, err)

		// about one second of audio. 50 frames at 50Hz plus the tail after the
		// trailer
		test.ExpectEquality(t, buf.Format.SampleRate, 44100, firmware)
		test.ExpectSuccess(t, len(buf.Data) >= 40000, firmware)
	}
}

func TestRenderTrace(t *testing.T) {
	t.Chdir(t.TempDir())

	trace := strings.Join([]string{
		"A 0000 1c-01-..-..-..-..-..-3e-0a",
		"A 9c40 ..-..-..-..-..-..-..-..-08",
		"bad line",
		"A 3880 ..-..-..-..-..-..-..-..-06",
	}, "\n")

	out := filepath.Join(t.TempDir(), "trace.wav")
	ret, s := run(t, trace, "RENDER", "-", out)
	test.ExpectEquality(t, ret, 0)
	test.ExpectSuccess(t, strings.HasPrefix(s, "rendered "))

	_, err := os.Stat(out)
	test.ExpectSuccess(t, err)
}

func TestDeltas(t *testing.T) {
	t.Chdir(t.TempDir())

	trace := "A 0000 00\nA 0028 00\nA 0050 00\nbad\n"

	ret, out := run(t, trace, "DELTAS")
	test.ExpectEquality(t, ret, 0)
	test.ExpectEquality(t, out, "   40: 2\nminimum delta: 40\nmalformed lines: 1\n")
}
