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

package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jetsetilly/ymstream/flow"
	"github.com/jetsetilly/ymstream/queue"
	"github.com/jetsetilly/ymstream/test"
	"github.com/jetsetilly/ymstream/transport"
)

// scripted is a transport that replays a list of responses. a nil response
// is a timeout
type scripted struct {
	reads   [][]byte
	writes  [][]byte
	readErr error
}

func (s *scripted) Read(max int, _ time.Duration) ([]byte, error) {
	if len(s.reads) == 0 {
		if s.readErr != nil {
			return nil, s.readErr
		}
		return []byte{}, nil
	}
	b := s.reads[0]
	s.reads = s.reads[1:]
	if b == nil {
		return []byte{}, nil
	}
	if len(b) > max {
		s.reads = append([][]byte{b[max:]}, s.reads...)
		b = b[:max]
	}
	return b, nil
}

func (s *scripted) Write(p []byte) error {
	c := make([]byte, len(p))
	copy(c, p)
	s.writes = append(s.writes, c)
	return nil
}

func (s *scripted) Close() error {
	return nil
}

func finishedQueue(t *testing.T, data []byte) *queue.Queue {
	t.Helper()
	q := queue.NewQueue(100)
	test.DemandSuccess(t, q.Push(context.Background(), data))
	test.DemandEquality(t, q.Finish(nil), true)
	return q
}

func TestNoAck(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	q := finishedQueue(t, data)

	port := &scripted{
		reads: [][]byte{{0, 4}, nil, {0, 4}, {0x01, 0x00}},
	}

	fc := flow.NewController(port, q, flow.Fast)

	var progress []flow.Progress
	fc.OnProgress = func(p flow.Progress) {
		progress = append(progress, p)
	}

	test.ExpectSuccess(t, fc.Run(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.Done)

	test.DemandEquality(t, len(port.writes), 3)
	test.ExpectSlice(t, port.writes[0], data[:4])
	test.ExpectSlice(t, port.writes[1], data[4:8])
	test.ExpectSlice(t, port.writes[2], data[8:])

	test.ExpectEquality(t, fc.Sent, len(data))
	test.ExpectEquality(t, fc.Chunks, 3)
	test.ExpectEquality(t, fc.Credits, 3)

	test.DemandEquality(t, len(progress), 3)
	test.ExpectEquality(t, progress[0], flow.Progress{Available: 4, Queued: 10, Sent: 0})
	test.ExpectEquality(t, progress[2], flow.Progress{Available: 256, Queued: 2, Sent: 8})
}

func TestAck(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	q := finishedQueue(t, data)

	port := &scripted{
		// credit, ack, credit, timeout, ack
		reads: [][]byte{{0, 4}, {0x06}, {0x03, 0x00}, nil, {0x06}},
	}

	fc := flow.NewController(port, q, flow.Slow)
	test.ExpectSuccess(t, fc.Run(context.Background()))

	test.DemandEquality(t, len(port.writes), 4)
	test.ExpectSlice(t, port.writes[0], []byte{0, 4})
	test.ExpectSlice(t, port.writes[1], data[:4])
	test.ExpectSlice(t, port.writes[2], []byte{0, 2})
	test.ExpectSlice(t, port.writes[3], data[4:])
}

func TestByteCredit(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = uint8(i)
	}
	q := finishedQueue(t, data)

	port := &scripted{
		reads: [][]byte{{0xff}, {0xff}},
	}

	fc := flow.NewController(port, q, flow.Byte)
	test.ExpectSuccess(t, fc.Run(context.Background()))

	test.DemandEquality(t, len(port.writes), 2)
	test.ExpectEquality(t, len(port.writes[0]), 255)
	test.ExpectEquality(t, len(port.writes[1]), 45)
	test.ExpectSlice(t, append(port.writes[0], port.writes[1]...), data)
}

func TestZeroCredit(t *testing.T) {
	q := finishedQueue(t, []byte{1, 2})

	port := &scripted{
		reads: [][]byte{{0, 0}, {0, 1}, {0, 0}, {0, 0}, {0, 5}},
	}

	fc := flow.NewController(port, q, flow.Fast)
	test.ExpectSuccess(t, fc.Run(context.Background()))

	// a credit of zero never results in a write
	test.DemandEquality(t, len(port.writes), 2)
	test.ExpectSlice(t, port.writes[0], []byte{1})
	test.ExpectSlice(t, port.writes[1], []byte{2})
}

func TestNeverExceedsCredit(t *testing.T) {
	data := make([]byte, 1000)
	q := finishedQueue(t, data)

	credits := []int{7, 300, 1, 64, 255, 1000}
	var reads [][]byte
	for _, c := range credits {
		reads = append(reads, []byte{uint8(c >> 8), uint8(c)})
	}
	port := &scripted{reads: reads}

	fc := flow.NewController(port, q, flow.Fast)
	test.ExpectSuccess(t, fc.Run(context.Background()))

	test.DemandEquality(t, len(port.writes), len(credits))
	total := 0
	for i, w := range port.writes {
		test.ExpectSuccess(t, len(w) <= credits[i], i)
		total += len(w)
	}
	test.ExpectEquality(t, total, len(data))
}

func TestTimeoutRetried(t *testing.T) {
	q := finishedQueue(t, []byte{1})

	port := &scripted{
		reads: [][]byte{nil, nil, nil, {0}, nil, {1}},
	}

	fc := flow.NewController(port, q, flow.Fast)

	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.AwaitCreditHi)
	for range 3 {
		test.ExpectSuccess(t, fc.Step(context.Background()))
		test.ExpectEquality(t, fc.State(), flow.AwaitCreditHi)
	}
	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.AwaitCreditLo)
	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.AwaitCreditLo)
	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.Transmit)
	test.ExpectEquality(t, fc.Available(), 1)
	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.Idle)
	test.ExpectSuccess(t, fc.Step(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.Done)
}

func TestTransportError(t *testing.T) {
	q := finishedQueue(t, []byte{1, 2, 3})

	unplugged := errors.New("unplugged")
	port := &scripted{readErr: unplugged}

	fc := flow.NewController(port, q, flow.Slow)
	err := fc.Run(context.Background())
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, transport.Closed))
	test.ExpectSuccess(t, errors.Is(err, unplugged))
	test.ExpectInequality(t, fc.State(), flow.Done)
}

func TestDoneOnlyWhenDrained(t *testing.T) {
	q := queue.NewQueue(100)
	port := &scripted{}

	fc := flow.NewController(port, q, flow.Fast)
	fc.Poll = time.Millisecond

	// queue is empty but not finished. the controller waits
	for range 5 {
		test.ExpectSuccess(t, fc.Step(context.Background()))
		test.ExpectEquality(t, fc.State(), flow.Idle)
	}
	test.ExpectEquality(t, fc.Waits, 5)

	q.Finish([]byte{0xff})
	port.reads = [][]byte{{0, 10}}

	test.ExpectSuccess(t, fc.Run(context.Background()))
	test.ExpectEquality(t, fc.State(), flow.Done)
	test.DemandEquality(t, len(port.writes), 1)
	test.ExpectSlice(t, port.writes[0], []byte{0xff})
}

func TestCancel(t *testing.T) {
	q := queue.NewQueue(100)
	port := &scripted{}

	fc := flow.NewController(port, q, flow.Fast)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fc.Run(ctx)
	test.ExpectSuccess(t, errors.Is(err, context.Canceled))
	test.ExpectSuccess(t, !errors.Is(err, transport.Closed))
}

func TestDialectByName(t *testing.T) {
	d, err := flow.DialectByName("SLOW")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, flow.Slow)

	d, err = flow.DialectByName("byte")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d.CreditBytes, 1)
	test.ExpectEquality(t, d.MaxCredit(), 255)

	_, err = flow.DialectByName("turbo")
	test.ExpectFailure(t, err)
}
