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

// Package serialport implements the transport.Transport interface for a
// serial device using "github.com/jacobsa/go-serial". It is an alternative to
// the termport package for USB serial adaptors whose drivers do not honour
// the termios read timeout.
//
// The device is read by a dedicated goroutine that passes data to Read()
// over a channel. Read() can then apply its own timeout.
package serialport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/transport"
)

// size of the buffer used by the reading goroutine.
const readSize = 256

type result struct {
	data []byte
	err  error
}

// Port is a serial device.
type Port struct {
	rwc  io.ReadWriteCloser
	path string

	fromDevice chan result
	quit       chan bool
	closeOnce  sync.Once

	// data received from the device but not yet returned by Read()
	pending []byte

	// the error that ended the reading goroutine
	err error
}

// Open the serial device at the given speed. Eight data bits, one stop bit
// and no parity.
func Open(path string, baud int) (*Port, error) {
	options := serial.OpenOptions{
		PortName:        path,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	rwc, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("serialport: %s: %w", path, err)
	}

	return newPort(rwc, path), nil
}

func newPort(rwc io.ReadWriteCloser, path string) *Port {
	p := &Port{
		rwc:        rwc,
		path:       path,
		fromDevice: make(chan result),
		quit:       make(chan bool),
	}

	go func() {
		for {
			b := make([]byte, readSize)
			n, err := rwc.Read(b)
			r := result{data: b[:n], err: err}
			if n == 0 && err == nil {
				continue
			}
			select {
			case p.fromDevice <- r:
			case <-p.quit:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	logger.Logf(logger.Allow, "serialport", "opened %s", path)

	return p
}

func (p *Port) String() string {
	return p.path
}

// Read implements the transport.Transport interface.
func (p *Port) Read(max int, timeout time.Duration) ([]byte, error) {
	if len(p.pending) == 0 {
		if p.err != nil {
			return nil, p.err
		}

		t := time.NewTimer(timeout)
		defer t.Stop()

		select {
		case r := <-p.fromDevice:
			p.pending = r.data
			if r.err != nil {
				p.err = fmt.Errorf("serialport: %w: %v", transport.Closed, r.err)
				if len(p.pending) == 0 {
					return nil, p.err
				}
			}
		case <-t.C:
			return []byte{}, nil
		}
	}

	if max > len(p.pending) {
		max = len(p.pending)
	}
	b := p.pending[:max]
	p.pending = p.pending[max:]
	return b, nil
}

// Write implements the transport.Transport interface.
func (p *Port) Write(b []byte) error {
	for len(b) > 0 {
		n, err := p.rwc.Write(b)
		if err != nil {
			return fmt.Errorf("serialport: %w: %v", transport.Closed, err)
		}
		b = b[n:]
	}
	return nil
}

// Close implements the transport.Transport interface.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.quit)
		err = p.rwc.Close()
		logger.Logf(logger.Allow, "serialport", "closed %s", p.path)
	})
	if err != nil {
		return fmt.Errorf("serialport: %w", err)
	}
	return nil
}
