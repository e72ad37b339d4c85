// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package netchannel

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/tochemey/netactor/backpressure"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/wire"
)

const writeBatch = 256

type entry struct {
	frame *wire.Frame
	data  []byte
	sent  int
}

// outbox is the queue of sequenced frames to one peer. It outlives
// connections: frames move from pending to unacked when written and leave
// when the peer acknowledges them. A lost connection rewinds unacked frames
// to pending so the next connection writes them again.
type outbox struct {
	mu       sync.Mutex
	session  string
	next     uint64
	pending  []*entry
	unacked  []*entry
	epoch    uint64
	closed   bool
	slots    *semaphore.Weighted
	policy   backpressure.Policy
	maxFrame int
	signal   chan struct{}
}

func newOutbox(capacity int, policy backpressure.Policy, maxFrame int) *outbox {
	return &outbox{
		session:  uuid.NewString(),
		slots:    semaphore.NewWeighted(int64(capacity)),
		policy:   policy,
		maxFrame: maxFrame,
		signal:   make(chan struct{}, 1),
	}
}

// enqueue assigns the next sequence number to frame and queues it
func (o *outbox) enqueue(ctx context.Context, frame *wire.Frame) error {
	if err := o.acquire(ctx); err != nil {
		return err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.slots.Release(1)
		return gerrors.ErrConnectionClosed
	}

	frame.Sequence = o.next + 1
	data, err := wire.Marshal(frame, o.maxFrame)
	if err != nil {
		frame.Sequence = 0
		o.mu.Unlock()
		o.slots.Release(1)
		return err
	}

	o.next++
	o.pending = append(o.pending, &entry{frame: frame, data: data})
	o.mu.Unlock()
	o.kick()
	return nil
}

func (o *outbox) acquire(ctx context.Context) error {
	if !o.policy.Blocking() {
		if !o.slots.TryAcquire(1) {
			return gerrors.ErrMailboxFull
		}
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, o.policy.Timeout())
	defer cancel()
	if err := o.slots.Acquire(tctx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return gerrors.ErrMailboxFull
	}
	return nil
}

func (o *outbox) kick() {
	select {
	case o.signal <- struct{}{}:
	default:
	}
}

// take moves up to writeBatch pending frames to unacked and returns them.
// It returns nothing when epoch is stale.
func (o *outbox) take(epoch uint64) (out []*entry, retransmits int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if epoch != o.epoch || len(o.pending) == 0 {
		return nil, 0
	}

	n := min(len(o.pending), writeBatch)
	out = make([]*entry, n)
	copy(out, o.pending[:n])
	o.pending = o.pending[n:]
	for _, e := range out {
		if e.sent > 0 {
			retransmits++
		}
		e.sent++
	}
	o.unacked = append(o.unacked, out...)
	return out, retransmits
}

// hasPending reports whether frames wait to be written
func (o *outbox) hasPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending) > 0
}

// ack releases every frame of session up to seq
func (o *outbox) ack(session string, seq uint64) int {
	o.mu.Lock()
	if session != o.session || seq == 0 {
		o.mu.Unlock()
		return 0
	}

	released := 0
	for len(o.unacked) > 0 && o.unacked[0].frame.Sequence <= seq {
		o.unacked[0] = nil
		o.unacked = o.unacked[1:]
		released++
	}
	for len(o.pending) > 0 && o.pending[0].frame.Sequence <= seq {
		o.pending[0] = nil
		o.pending = o.pending[1:]
		released++
	}
	o.mu.Unlock()

	if released > 0 {
		o.slots.Release(int64(released))
	}
	return released
}

// rewind puts unacked frames back in front of pending and starts a new epoch.
// Writers of older epochs take nothing afterwards.
func (o *outbox) rewind() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.unacked) > 0 {
		o.pending = append(o.unacked, o.pending...)
		o.unacked = nil
	}
	o.epoch++
	return o.epoch
}

// failAll empties the outbox and starts a new session, so that the peer
// does not mistake the dropped sequence numbers for a gap.
func (o *outbox) failAll() []*wire.Frame {
	o.mu.Lock()
	failed := make([]*wire.Frame, 0, len(o.unacked)+len(o.pending))
	for _, e := range o.unacked {
		failed = append(failed, e.frame)
	}
	for _, e := range o.pending {
		failed = append(failed, e.frame)
	}
	o.unacked = nil
	o.pending = nil
	o.session = uuid.NewString()
	o.next = 0
	o.epoch++
	o.mu.Unlock()

	if len(failed) > 0 {
		o.slots.Release(int64(len(failed)))
	}
	return failed
}

// close fails everything and rejects later frames
func (o *outbox) close() []*wire.Frame {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return o.failAll()
}

// outstanding returns the number of frames not yet acknowledged
func (o *outbox) outstanding() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending) + len(o.unacked)
}

// position returns the session and the last assigned sequence number
func (o *outbox) position() (string, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session, o.next
}
