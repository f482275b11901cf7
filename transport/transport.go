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

// Package transport defines the byte channel between the host and the
// playback device.
//
// Implementations are found in the sub-packages. The virtualdevice package
// also implements the Transport interface.
package transport

import (
	"errors"
	"time"
)

// Closed is wrapped by any error that means the link to the device has gone.
// Nothing more can be sent or received.
var Closed = errors.New("transport closed")

// Timeout may be wrapped by an error from Read() when no data arrived before
// the timeout expired. Implementations can also indicate a timeout by
// returning an empty slice and a nil error. Neither case is a failure.
var Timeout = errors.New("transport timeout")

// Transport is a duplex byte channel to the device.
type Transport interface {
	// Read returns between zero and max bytes. Zero bytes are returned if
	// nothing arrives before the timeout expires.
	Read(max int, timeout time.Duration) ([]byte, error)

	// Write sends all of p before returning.
	Write(p []byte) error

	Close() error
}

// IsTimeout returns true if the result of a Read() indicates that the
// timeout expired. An error that is not a timeout returns false.
func IsTimeout(b []byte, err error) bool {
	if err != nil {
		return errors.Is(err, Timeout)
	}
	return len(b) == 0
}
