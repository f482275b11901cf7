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

// Package termport implements the transport.Transport interface for a serial
// device using the termios wrapper in "github.com/pkg/term".
package termport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/transport"
	"github.com/pkg/term"
)

// VTIME has a resolution of a tenth of a second and a maximum of 25.5
// seconds.
const (
	minTimeout = 100 * time.Millisecond
	maxTimeout = 25500 * time.Millisecond
)

// Port is a serial device opened in raw mode.
type Port struct {
	t       *term.Term
	path    string
	timeout time.Duration
}

// Open the serial device at the given speed. Anything received by the host
// before the device was opened is discarded.
func Open(path string, baud int) (*Port, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("termport: %s: %w", path, err)
	}

	err = t.Flush()
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("termport: %s: %w", path, err)
	}

	logger.Logf(logger.Allow, "termport", "opened %s at %d baud", path, baud)

	return &Port{
		t:    t,
		path: path,
	}, nil
}

func (p *Port) String() string {
	return p.path
}

// Read implements the transport.Transport interface.
func (p *Port) Read(max int, timeout time.Duration) ([]byte, error) {
	if timeout < minTimeout {
		timeout = minTimeout
	} else if timeout > maxTimeout {
		timeout = maxTimeout
	}

	if timeout != p.timeout {
		err := p.t.SetReadTimeout(timeout)
		if err != nil {
			return nil, fmt.Errorf("termport: %w: %v", transport.Closed, err)
		}
		p.timeout = timeout
	}

	b := make([]byte, max)
	n, err := p.t.Read(b)
	if err != nil {
		// an expired VTIME is reported as a zero length read
		if errors.Is(err, io.EOF) && n == 0 {
			return b[:0], nil
		}
		return nil, fmt.Errorf("termport: %w: %v", transport.Closed, err)
	}
	return b[:n], nil
}

// Write implements the transport.Transport interface.
func (p *Port) Write(b []byte) error {
	for len(b) > 0 {
		n, err := p.t.Write(b)
		if err != nil {
			return fmt.Errorf("termport: %w: %v", transport.Closed, err)
		}
		b = b[n:]
	}
	return nil
}

// Close implements the transport.Transport interface. Output not yet sent by
// the device driver is sent before the device is closed.
func (p *Port) Close() error {
	_ = p.t.Restore()
	err := p.t.Close()
	if err != nil {
		return fmt.Errorf("termport: %w", err)
	}
	logger.Logf(logger.Allow, "termport", "closed %s", p.path)
	return nil
}
