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

package virtualdevice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/transport"
	"github.com/jetsetilly/ymstream/wire"
)

// BufferSize is the size of the circular buffer in the device.
const BufferSize = 1024

// AckByte is sent by the device to acknowledge a chunk proposal.
const AckByte = 0x06

// Sentinel errors returned by the Device.
var (
	ErrOverrun  = errors.New("overrun")
	ErrProtocol = errors.New("protocol error")
)

// the duration of one tick of the device timer
const tick = time.Second / wire.TimerClock

// Sink receives packets as they are played by the device.
type Sink interface {
	// ticks is the number of timer ticks between the previous packet and
	// this one. it is zero for the first packet
	Play(p wire.Packet, ticks int)
}

// SinkFunc allows a function to be used as a Sink.
type SinkFunc func(p wire.Packet, ticks int)

// Play implements the Sink interface.
func (f SinkFunc) Play(p wire.Packet, ticks int) {
	f(p, ticks)
}

// the position of the device in the flow control handshake.
type handshake int

const (
	reportCredit handshake = iota
	awaitProposal
	awaitAckRead
	receivePayload
)

// Stats are the running totals of the Device.
type Stats struct {
	Received  int
	Reports   int
	Played    int
	Underruns int
	Discarded int
}

// Device is the emulated playback device.
type Device struct {
	dialect  flow.Dialect
	sink     Sink
	realtime bool

	crit sync.Mutex

	buf    *ring
	parser *wire.Parser

	// packets taken from the buffer but not yet played
	ready []wire.Packet

	// a packet is waiting for its time to be played
	inflight bool

	hs        handshake
	out       []byte
	credit    int
	remaining int
	proposal  []byte

	// timestamp of the previous packet
	prevTimestamp uint16
	started       bool

	closed bool
	err    error

	stats Stats

	space   chan bool
	data    chan bool
	quit    chan bool
	playing sync.WaitGroup
}

func notify(ch chan bool) {
	select {
	case ch <- true:
	default:
	}
}

// NewDevice is the preferred method of initialisation for the Device type.
// The Sink must not call any of the Device's functions.
func NewDevice(dialect flow.Dialect, sink Sink, realtime bool) *Device {
	dev := &Device{
		dialect:  dialect,
		sink:     sink,
		realtime: realtime,
		buf:      newRing(BufferSize),
		space:    make(chan bool, 1),
		data:     make(chan bool, 1),
		quit:     make(chan bool),
	}

	dev.parser = wire.NewParser(func(p wire.Packet) {
		dev.ready = append(dev.ready, p)
	})

	if realtime {
		dev.playing.Add(1)
		go dev.playback()
	}

	return dev
}

func (dev *Device) String() string {
	if dev.realtime {
		return fmt.Sprintf("virtual device (%s, real time)", dev.dialect)
	}
	return fmt.Sprintf("virtual device (%s)", dev.dialect)
}

// Stats returns a copy of the device statistics.
func (dev *Device) Stats() Stats {
	dev.crit.Lock()
	defer dev.crit.Unlock()
	s := dev.stats
	s.Discarded = dev.parser.Discarded
	return s
}

// Read implements the transport.Transport interface.
func (dev *Device) Read(max int, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)

	dev.crit.Lock()
	defer dev.crit.Unlock()

	for {
		if dev.err != nil {
			return nil, dev.err
		}
		if dev.closed {
			return nil, fmt.Errorf("virtualdevice: %w", transport.Closed)
		}

		if len(dev.out) > 0 {
			n := min(max, len(dev.out))
			b := make([]byte, n)
			copy(b, dev.out)
			dev.out = dev.out[n:]
			if len(dev.out) == 0 && dev.hs == awaitAckRead {
				dev.hs = receivePayload
			}
			return b, nil
		}

		switch dev.hs {
		case receivePayload:
			// without an acknowledgement stage the only way for the device
			// to know that the host has finished sending is that it is
			// listening again
			if !dev.dialect.Ack {
				dev.hs = reportCredit
				continue
			}
		case reportCredit:
			if free := dev.buf.Free(); free > 0 {
				dev.report(free)
				continue
			}
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return []byte{}, nil
		}

		dev.crit.Unlock()
		t := time.NewTimer(wait)
		select {
		case <-dev.space:
		case <-dev.quit:
		case <-t.C:
		}
		t.Stop()
		dev.crit.Lock()
	}
}

// report free space to the host. the credit is limited by what can be
// expressed by the dialect.
func (dev *Device) report(free int) {
	dev.credit = min(free, dev.dialect.MaxCredit())
	if dev.dialect.CreditBytes == 1 {
		dev.out = []byte{uint8(dev.credit)}
	} else {
		dev.out = []byte{uint8(dev.credit >> 8), uint8(dev.credit)}
	}

	if dev.dialect.Ack {
		dev.hs = awaitProposal
	} else {
		dev.remaining = dev.credit
		dev.hs = receivePayload
	}

	dev.stats.Reports++
}

func (dev *Device) fail(err error) error {
	dev.err = fmt.Errorf("virtualdevice: %w", err)
	logger.Log(logger.Allow, "virtualdevice", dev.err)
	return dev.err
}

// Write implements the transport.Transport interface.
func (dev *Device) Write(p []byte) error {
	dev.crit.Lock()
	defer dev.crit.Unlock()

	if dev.err != nil {
		return dev.err
	}
	if dev.closed {
		return fmt.Errorf("virtualdevice: %w", transport.Closed)
	}

	for len(p) > 0 {
		switch dev.hs {
		case reportCredit:
			return dev.fail(fmt.Errorf("%w: %d bytes sent without credit", ErrOverrun, len(p)))

		case awaitAckRead:
			return dev.fail(fmt.Errorf("%w: data sent before acknowledgement was read", ErrProtocol))

		case awaitProposal:
			n := min(2-len(dev.proposal), len(p))
			dev.proposal = append(dev.proposal, p[:n]...)
			p = p[n:]
			if len(dev.proposal) < 2 {
				break
			}

			chunk := int(dev.proposal[0])<<8 | int(dev.proposal[1])
			dev.proposal = dev.proposal[:0]
			if chunk == 0 || chunk > dev.credit {
				return dev.fail(fmt.Errorf("%w: proposal of %d bytes with credit of %d", ErrProtocol, chunk, dev.credit))
			}

			dev.remaining = chunk
			dev.out = []byte{AckByte}
			dev.hs = awaitAckRead

		case receivePayload:
			if len(p) > dev.remaining {
				return dev.fail(fmt.Errorf("%w: %d bytes sent with %d remaining", ErrOverrun, len(p), dev.remaining))
			}

			dev.buf.Put(p)
			dev.remaining -= len(p)
			dev.stats.Received += len(p)
			p = nil

			if dev.dialect.Ack && dev.remaining == 0 {
				dev.hs = reportCredit
			}

			notify(dev.data)
		}
	}

	if !dev.realtime {
		for {
			pkt, ok := dev.nextPacket()
			if !ok {
				break
			}
			dev.stats.Played++
			dev.sink.Play(pkt, dev.ticks(pkt))
		}
	}

	return nil
}

// nextPacket takes bytes from the buffer until a complete packet is available.
// must be called with the critical section locked.
func (dev *Device) nextPacket() (wire.Packet, bool) {
	for len(dev.ready) == 0 {
		v, ok := dev.buf.Get()
		if !ok {
			return wire.Packet{}, false
		}
		_, _ = dev.parser.Write([]byte{v})
	}
	p := dev.ready[0]
	dev.ready = dev.ready[1:]
	return p, true
}

// ticks returns the number of timer ticks between the previous packet and p.
// the timer is free running so a packet with the same timestamp as the
// previous packet is played after the timer has wrapped around.
//
// must be called with the critical section locked.
func (dev *Device) ticks(p wire.Packet) int {
	if !dev.started {
		dev.started = true
		dev.prevTimestamp = p.Timestamp
		return 0
	}

	d := int(p.Timestamp - dev.prevTimestamp)
	if d == 0 {
		d = 0x10000
	}
	dev.prevTimestamp = p.Timestamp
	return d
}

func (dev *Device) playback() {
	defer dev.playing.Done()

	var next time.Time

	for {
		dev.crit.Lock()
		p, ok := dev.nextPacket()
		var ticks int
		if ok {
			ticks = dev.ticks(p)
			dev.inflight = true
		}
		dev.crit.Unlock()

		if !ok {
			select {
			case <-dev.data:
			case <-dev.quit:
				return
			}
			continue
		}

		// the bytes taken from the buffer are now free
		notify(dev.space)

		now := time.Now()
		if ticks == 0 {
			next = now
		} else {
			next = next.Add(time.Duration(ticks) * tick)
		}

		// the packet is late. resynchronise rather than trying to catch up
		if next.Before(now) {
			if ticks > 0 {
				dev.crit.Lock()
				dev.stats.Underruns++
				dev.crit.Unlock()
			}
			next = now
		}

		t := time.NewTimer(time.Until(next))
		select {
		case <-t.C:
		case <-dev.quit:
			t.Stop()
			return
		}

		dev.sink.Play(p, ticks)

		dev.crit.Lock()
		dev.stats.Played++
		dev.inflight = false
		dev.crit.Unlock()
	}
}

// Drain blocks until all complete packets in the buffer have been played or
// the context is done.
func (dev *Device) Drain(ctx context.Context) error {
	tck := time.NewTicker(10 * time.Millisecond)
	defer tck.Stop()

	for {
		dev.crit.Lock()
		empty := dev.buf.Len() == 0 && len(dev.ready) == 0 && !dev.inflight
		closed := dev.closed
		dev.crit.Unlock()

		if empty || closed {
			return nil
		}

		select {
		case <-tck.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close implements the transport.Transport interface. Packets that have not
// yet been played are discarded.
func (dev *Device) Close() error {
	dev.crit.Lock()
	if dev.closed {
		dev.crit.Unlock()
		return nil
	}
	dev.closed = true
	close(dev.quit)
	dev.crit.Unlock()

	dev.playing.Wait()

	s := dev.Stats()
	logger.Logf(logger.Allow, "virtualdevice", "closed: %d bytes received, %d packets played, %d underruns",
		s.Received, s.Played, s.Underruns)

	return nil
}
