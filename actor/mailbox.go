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

package actor

import (
	"context"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/tochemey/netactor/backpressure"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/queue"
)

// mailbox is a bounded MPSC queue of envelopes. The queue itself is
// unbounded; capacity is held by a weighted semaphore acquired on enqueue
// and released on dequeue.
type mailbox struct {
	queue    *queue.MpscQueue[*Envelope]
	slots    *semaphore.Weighted
	policy   backpressure.Policy
	capacity int

	disposed *atomic.Bool
	// disposal wakes senders blocked on a full mailbox
	disposal       context.Context
	cancelDisposal context.CancelFunc
}

func newMailbox(capacity int, policy backpressure.Policy) *mailbox {
	disposal, cancel := context.WithCancel(context.Background())
	return &mailbox{
		queue:          queue.NewMpscQueue[*Envelope](),
		slots:          semaphore.NewWeighted(int64(capacity)),
		policy:         policy,
		capacity:       capacity,
		disposed:       atomic.NewBool(false),
		disposal:       disposal,
		cancelDisposal: cancel,
	}
}

// enqueue pushes envelope, waiting for room according to the policy.
// A disposed mailbox fails with ErrActorNotFound.
func (m *mailbox) enqueue(ctx context.Context, envelope *Envelope) error {
	if m.disposed.Load() {
		return gerrors.ErrActorNotFound
	}

	if err := m.acquire(ctx); err != nil {
		return err
	}

	if m.disposed.Load() {
		m.slots.Release(1)
		return gerrors.ErrActorNotFound
	}
	m.queue.Push(envelope)
	return nil
}

func (m *mailbox) acquire(ctx context.Context) error {
	if !m.policy.Blocking() {
		if !m.slots.TryAcquire(1) {
			return gerrors.ErrMailboxFull
		}
		return nil
	}

	if m.slots.TryAcquire(1) {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, m.policy.Timeout())
	defer cancel()
	stop := context.AfterFunc(m.disposal, cancel)
	defer stop()

	if err := m.slots.Acquire(tctx, 1); err != nil {
		switch {
		case m.disposed.Load():
			return gerrors.ErrActorNotFound
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return gerrors.ErrMailboxFull
		}
	}
	return nil
}

// dequeue pops the oldest envelope. Only the actor's drain loop calls it.
func (m *mailbox) dequeue() (*Envelope, bool) {
	envelope, ok := m.queue.Pop()
	if ok {
		m.slots.Release(1)
	}
	return envelope, ok
}

func (m *mailbox) isEmpty() bool {
	return m.queue.IsEmpty()
}

func (m *mailbox) len() int64 {
	return m.queue.Len()
}

// dispose rejects later envelopes, wakes blocked senders and drops what is
// queued. It returns the number of dropped envelopes.
func (m *mailbox) dispose() int {
	if !m.disposed.CompareAndSwap(false, true) {
		return 0
	}
	m.cancelDisposal()

	dropped := 0
	for {
		if _, ok := m.dequeue(); !ok {
			return dropped
		}
		dropped++
	}
}
