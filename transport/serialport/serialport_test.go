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

package serialport

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/transport"
)

// pipeDevice connects the port to an io.Pipe so the test can play the part
// of the device
type pipeDevice struct {
	*io.PipeReader
	w       *io.PipeWriter
	written chan []byte
}

func (d *pipeDevice) Write(p []byte) (int, error) {
	c := make([]byte, len(p))
	copy(c, p)
	d.written <- c
	return len(p), nil
}

func (d *pipeDevice) Close() error {
	return d.PipeReader.Close()
}

func newPipeDevice() *pipeDevice {
	r, w := io.Pipe()
	return &pipeDevice{PipeReader: r, w: w, written: make(chan []byte, 10)}
}

func TestReadTimeout(t *testing.T) {
	dev := newPipeDevice()
	p := newPort(dev, "pipe")
	defer p.Close()

	b, err := p.Read(2, 10*time.Millisecond)
	test.ExpectSuccess(t, transport.IsTimeout(b, err))
}

func TestReadPartial(t *testing.T) {
	dev := newPipeDevice()
	p := newPort(dev, "pipe")
	defer p.Close()

	go func() {
		_, _ = dev.w.Write([]byte{1, 2, 3})
	}()

	b, err := p.Read(2, time.Second)
	test.DemandSuccess(t, err)
	test.ExpectSlice(t, b, []byte{1, 2})

	// the remaining byte is returned without waiting
	b, err = p.Read(2, 0)
	test.DemandSuccess(t, err)
	test.ExpectSlice(t, b, []byte{3})
}

func TestWrite(t *testing.T) {
	dev := newPipeDevice()
	p := newPort(dev, "pipe")
	defer p.Close()

	test.DemandSuccess(t, p.Write([]byte{0xab, 0xcd}))
	test.ExpectSlice(t, <-dev.written, []byte{0xab, 0xcd})
}

func TestClosed(t *testing.T) {
	dev := newPipeDevice()
	p := newPort(dev, "pipe")
	defer p.Close()

	_ = dev.w.CloseWithError(errors.New("unplugged"))

	_, err := p.Read(1, time.Second)
	test.ExpectSuccess(t, errors.Is(err, transport.Closed))

	// the error is sticky
	_, err = p.Read(1, time.Second)
	test.ExpectSuccess(t, errors.Is(err, transport.Closed))
}
