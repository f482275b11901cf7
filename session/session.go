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

// Package session connects a packet source to a playback device.
//
// A Session runs two tasks. The producer takes packets from a Source and
// pushes them onto a queue. The consumer is a flow.Controller that moves
// bytes from the queue to the device as the device makes room for them.
//
// There are three ways for a session to end:
//
// The source is exhausted or Stop() is called. The producer appends the mute
// trailer to the queue and the consumer sends everything that has been
// queued, including the trailer. Run() returns nil.
//
// The context is cancelled. Both tasks stop as soon as possible and the
// trailer is not sent. Run() returns the context's error.
//
// Either task fails. The other task is stopped and the trailer is not sent.
// Run() returns the error.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/logger"
	"github.com/jetsetilly/ymstream/queue"
	"github.com/jetsetilly/ymstream/transport"
	"github.com/jetsetilly/ymstream/wire"
	"golang.org/x/sync/errgroup"
)

// Source produces packets in playback order. Next() returns io.EOF when there
// are no more packets.
//
// The wire.FrameSource and wire.TraceSource types implement this interface.
type Source interface {
	Next() ([]byte, error)
}

// Options for a new Session.
type Options struct {
	Dialect flow.Dialect

	// the producer waits when the queue holds more than this many bytes
	HighWater int

	// timeouts used by the flow controller
	ReadTimeout time.Duration
	Poll        time.Duration

	// how long to wait before talking to the device. some devices reset when
	// the serial port is opened
	StartDelay time.Duration
}

// DefaultHighWater is the queue high-water mark used when Options.HighWater
// is zero.
const DefaultHighWater = 3000

// DefaultOptions returns the options for the dialect with default values for
// everything else.
func DefaultOptions(dialect flow.Dialect) Options {
	return Options{
		Dialect:     dialect,
		HighWater:   DefaultHighWater,
		ReadTimeout: flow.DefaultReadTimeout,
		Poll:        flow.DefaultPoll,
	}
}

// Session streams packets to a device.
type Session struct {
	port    transport.Transport
	options Options
	queue   *queue.Queue
	fc      *flow.Controller

	crit     sync.Mutex
	stopped  bool
	stopFunc context.CancelFunc

	// number of packets pushed onto the queue. not including the trailer
	packets int

	// whether the trailer has been queued
	trailer bool
}

// NewSession is the preferred method of initialisation for the Session type.
// The transport is not closed by the Session.
func NewSession(port transport.Transport, options Options) *Session {
	if options.HighWater <= 0 {
		options.HighWater = DefaultHighWater
	}

	s := &Session{
		port:    port,
		options: options,
		queue:   queue.NewQueue(options.HighWater),
	}

	s.fc = flow.NewController(port, s.queue, options.Dialect)
	if options.ReadTimeout > 0 {
		s.fc.ReadTimeout = options.ReadTimeout
	}
	if options.Poll > 0 {
		s.fc.Poll = options.Poll
	}

	return s
}

// Controller returns the flow controller used by the session. It should only
// be used to set the progress callback before Run() and to read statistics
// after Run() has returned.
func (s *Session) Controller() *flow.Controller {
	return s.fc
}

// Packets returns the number of packets taken from the source.
func (s *Session) Packets() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.packets
}

// Trailer returns true if the mute trailer was queued.
func (s *Session) Trailer() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.trailer
}

// Stop asks a running session to finish gracefully. It does not wait for the
// session to end. It is safe to call Stop() before Run() and more than once.
func (s *Session) Stop() {
	s.crit.Lock()
	defer s.crit.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.stopFunc != nil {
		s.stopFunc()
	}
	logger.Log(logger.Allow, "session", "stop requested")
}

// Run streams the source to the device. It returns when the session has
// ended. See the package documentation for how a session ends.
func (s *Session) Run(ctx context.Context, src Source) error {
	g, gctx := errgroup.WithContext(ctx)

	// the producer's context is additionally cancelled by Stop()
	pctx, pcancel := context.WithCancel(gctx)
	defer pcancel()

	s.crit.Lock()
	s.stopFunc = pcancel
	if s.stopped {
		pcancel()
	}
	s.crit.Unlock()

	g.Go(func() error {
		return s.produce(gctx, pctx, src)
	})

	g.Go(func() error {
		return s.consume(gctx)
	})

	err := g.Wait()
	if err != nil {
		logger.Logf(logger.Allow, "session", "ended: %v", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("session: %w", err)
	}

	logger.Logf(logger.Allow, "session", "finished: %d packets, %d bytes", s.Packets(), s.fc.Sent)
	return nil
}

type fetched struct {
	p   []byte
	err error
}

func (s *Session) produce(gctx context.Context, pctx context.Context, src Source) error {
	// the source is read in its own goroutine because a source reading from
	// a terminal may block indefinitely. the goroutine is not part of the
	// errgroup for the same reason
	next := make(chan fetched)
	go func() {
		for {
			p, err := src.Next()
			select {
			case next <- fetched{p: p, err: err}:
			case <-pctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		var f fetched

		select {
		case f = <-next:
		case <-pctx.Done():
			return s.finish(gctx)
		}

		if f.err != nil {
			if errors.Is(f.err, io.EOF) {
				return s.finish(gctx)
			}
			return fmt.Errorf("source: %w", f.err)
		}

		err := s.queue.Push(pctx, f.p)
		if err != nil {
			if pctx.Err() != nil {
				return s.finish(gctx)
			}
			return err
		}

		s.crit.Lock()
		s.packets++
		s.crit.Unlock()
	}
}

// finish the queue with the mute trailer. if the session has been aborted
// the trailer is not added.
func (s *Session) finish(gctx context.Context) error {
	if err := gctx.Err(); err != nil {
		return err
	}

	if s.queue.Finish(wire.MuteTrailer()) {
		s.crit.Lock()
		s.trailer = true
		s.crit.Unlock()
		logger.Logf(logger.Allow, "session", "source finished after %d packets", s.Packets())
	}

	return nil
}

func (s *Session) consume(gctx context.Context) error {
	if s.options.StartDelay > 0 {
		t := time.NewTimer(s.options.StartDelay)
		select {
		case <-t.C:
		case <-gctx.Done():
			t.Stop()
			return gctx.Err()
		}
	}

	return s.fc.Run(gctx)
}
