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

// Package queue implements the pending byte queue that sits between the
// packet producer and the flow controller.
//
// The queue has a high-water mark rather than a capacity. A producer pushing
// while the queue holds more than the high-water mark will wait until the
// consumer has taken enough bytes. Once it is allowed to proceed the whole
// push is accepted, even if that takes the queue over the mark. Nothing is
// ever dropped and packets are never split by a push.
//
// The producer ends the queue with Finish(), which appends the final bytes
// (the mute trailer) exactly once. The consumer knows it is done when
// Drained() returns true.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrFinished is returned by Push() if the queue has been finished.
var ErrFinished = errors.New("queue: finished")

// Queue is a single producer, single consumer byte FIFO.
type Queue struct {
	crit      sync.Mutex
	buf       []byte
	highWater int
	finished  bool

	// notification channels. they have a capacity of one and are written
	// with a non-blocking send so a notification is never lost and never
	// blocks
	space chan bool
	data  chan bool
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue(highWater int) *Queue {
	return &Queue{
		buf:       make([]byte, 0, highWater*2),
		highWater: highWater,
		space:     make(chan bool, 1),
		data:      make(chan bool, 1),
	}
}

func notify(ch chan bool) {
	select {
	case ch <- true:
	default:
	}
}

// HighWater returns the high-water mark of the queue.
func (q *Queue) HighWater() int {
	return q.highWater
}

// Len returns the number of bytes in the queue.
func (q *Queue) Len() int {
	q.crit.Lock()
	defer q.crit.Unlock()
	return len(q.buf)
}

// Push appends p to the queue. If the queue is over the high-water mark the
// function blocks until the consumer has made room or the context is done.
func (q *Queue) Push(ctx context.Context, p []byte) error {
	for {
		q.crit.Lock()
		if q.finished {
			q.crit.Unlock()
			return ErrFinished
		}
		if len(q.buf) < q.highWater {
			q.buf = append(q.buf, p...)
			q.crit.Unlock()
			notify(q.data)
			return nil
		}
		q.crit.Unlock()

		select {
		case <-q.space:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Finish appends the trailer and marks the queue as finished. Further calls
// to Push() will fail. Only the first call to Finish() has any effect and
// the return value is false for any subsequent call.
func (q *Queue) Finish(trailer []byte) bool {
	q.crit.Lock()
	if q.finished {
		q.crit.Unlock()
		return false
	}
	q.buf = append(q.buf, trailer...)
	q.finished = true
	q.crit.Unlock()

	notify(q.data)
	notify(q.space)
	return true
}

// Finished returns true if Finish() has been called.
func (q *Queue) Finished() bool {
	q.crit.Lock()
	defer q.crit.Unlock()
	return q.finished
}

// Drained returns true if the queue is finished and empty.
func (q *Queue) Drained() bool {
	q.crit.Lock()
	defer q.crit.Unlock()
	return q.finished && len(q.buf) == 0
}

// Pop removes and returns up to n bytes from the front of the queue.
func (q *Queue) Pop(n int) []byte {
	q.crit.Lock()
	if n > len(q.buf) {
		n = len(q.buf)
	}
	p := make([]byte, n)
	copy(p, q.buf)

	// move remaining bytes to the front of the buffer so that the buffer
	// does not grow without bound
	m := copy(q.buf, q.buf[n:])
	q.buf = q.buf[:m]
	q.crit.Unlock()

	if n > 0 {
		notify(q.space)
	}
	return p
}

// Wait blocks until there is data in the queue, the queue is finished, the
// timeout expires or the context is done. It returns the context's error if
// the context is done and nil otherwise.
func (q *Queue) Wait(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.crit.Lock()
	ready := len(q.buf) > 0 || q.finished
	q.crit.Unlock()
	if ready {
		return nil
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-q.data:
	case <-t.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
