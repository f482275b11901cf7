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

package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/queue"
	"github.com/jetsetilly/ymstream/transport"
)

// Default timing values used by NewController().
const (
	DefaultReadTimeout = 2 * time.Second
	DefaultPoll        = 10 * time.Millisecond
)

// Progress is sent to the progress function after every credit report.
type Progress struct {
	// the credit reported by the device
	Available int

	// the number of bytes waiting in the queue
	Queued int

	// the total number of payload bytes sent so far
	Sent int
}

// Controller moves bytes from the queue to the device, never sending more
// than the device has said it can accept.
type Controller struct {
	port    transport.Transport
	queue   *queue.Queue
	dialect Dialect

	state State

	// the most recent credit reported by the device
	available int

	// the size of the chunk being sent. only meaningful in the Transmit and
	// AwaitAck states
	chunk int

	// how long to wait for the device to respond
	ReadTimeout time.Duration

	// how long to wait for the queue when it is empty
	Poll time.Duration

	// called after every credit report. may be nil
	OnProgress func(Progress)

	// statistics
	Credits int
	Chunks  int
	Sent    int
	Waits   int
}

// NewController is the preferred method of initialisation for the Controller
// type.
func NewController(port transport.Transport, q *queue.Queue, dialect Dialect) *Controller {
	return &Controller{
		port:        port,
		queue:       q,
		dialect:     dialect,
		ReadTimeout: DefaultReadTimeout,
		Poll:        DefaultPoll,
	}
}

// State returns the current state of the controller.
func (fc *Controller) State() State {
	return fc.state
}

// Available returns the most recent credit reported by the device.
func (fc *Controller) Available() int {
	return fc.available
}

// Dialect returns the dialect used by the controller.
func (fc *Controller) Dialect() Dialect {
	return fc.dialect
}

// Run calls Step() until the Done state is reached, the context is done or an
// error occurs.
func (fc *Controller) Run(ctx context.Context) error {
	for fc.state != Done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fc.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the controller by one state. Any error other than a context
// error wraps transport.Closed.
//
// A read from the device that times out leaves the controller in the same
// state. The next call to Step() will try again.
func (fc *Controller) Step(ctx context.Context) error {
	switch fc.state {
	case Idle:
		if fc.queue.Len() > 0 {
			fc.available = 0
			if fc.dialect.CreditBytes == 1 {
				fc.state = AwaitCreditLo
			} else {
				fc.state = AwaitCreditHi
			}
			return nil
		}

		if fc.queue.Drained() {
			fc.state = Done
			logger.Logf(logger.Allow, "flow", "done: %d bytes in %d chunks", fc.Sent, fc.Chunks)
			return nil
		}

		fc.Waits++
		return fc.queue.Wait(ctx, fc.Poll)

	case AwaitCreditHi:
		v, ok, err := fc.readByte()
		if err != nil || !ok {
			return err
		}
		fc.available = int(v) << 8
		fc.state = AwaitCreditLo

	case AwaitCreditLo:
		v, ok, err := fc.readByte()
		if err != nil || !ok {
			return err
		}
		fc.available |= int(v)
		fc.Credits++
		fc.state = Transmit

		if fc.OnProgress != nil {
			fc.OnProgress(Progress{
				Available: fc.available,
				Queued:    fc.queue.Len(),
				Sent:      fc.Sent,
			})
		}

	case Transmit:
		fc.chunk = min(fc.available, fc.queue.Len())
		if fc.chunk == 0 {
			fc.state = Idle
			return nil
		}

		if fc.dialect.Ack {
			err := fc.write([]byte{uint8(fc.chunk >> 8), uint8(fc.chunk)})
			if err != nil {
				return err
			}
			fc.state = AwaitAck
			return nil
		}

		return fc.transmit()

	case AwaitAck:
		_, ok, err := fc.readByte()
		if err != nil || !ok {
			return err
		}
		return fc.transmit()

	case Done:
	}

	return nil
}

// send the chunk and return to the Idle state.
func (fc *Controller) transmit() error {
	p := fc.queue.Pop(fc.chunk)
	err := fc.write(p)
	if err != nil {
		return err
	}
	fc.Sent += len(p)
	fc.Chunks++
	fc.state = Idle
	return nil
}

// the second return value is false if the read timed out.
func (fc *Controller) readByte() (uint8, bool, error) {
	b, err := fc.port.Read(1, fc.ReadTimeout)
	if transport.IsTimeout(b, err) {
		logger.Logf(logger.Allow, "flow", "no response from device (%s)", fc.state)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, closed(err)
	}
	return b[0], true, nil
}

func (fc *Controller) write(p []byte) error {
	err := fc.port.Write(p)
	if err != nil {
		return closed(err)
	}
	return nil
}

func closed(err error) error {
	if errors.Is(err, transport.Closed) {
		return fmt.Errorf("flow: %w", err)
	}
	return fmt.Errorf("flow: %w: %w", transport.Closed, err)
}
