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
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/log"
)

// processing states of a cell
const (
	// idle means no drain loop is scheduled
	idle int32 = iota
	// busy means a drain loop is scheduled or running
	busy
)

// cell is the runtime side of one actor: its behavior, its mailbox and the
// guard that lets at most one drain loop run at a time.
type cell struct {
	id       address.ActorID
	kind     string
	behavior Behavior
	env      *Environment
	mailbox  *mailbox
	logger   log.Logger

	processing    *atomic.Int32
	stopRequested *atomic.Bool
	processed     *atomic.Uint64
	done          chan struct{}

	// only touched by the drain loop
	started   bool
	startedOK bool

	mu      sync.RWMutex
	summary any
}

func newCell(env *Environment, id address.ActorID, kind string, behavior Behavior, mbox *mailbox) *cell {
	return &cell{
		id:            id,
		kind:          kind,
		behavior:      behavior,
		env:           env,
		mailbox:       mbox,
		logger:        env.logger.With("actor", string(id)),
		processing:    atomic.NewInt32(idle),
		stopRequested: atomic.NewBool(false),
		processed:     atomic.NewUint64(0),
		done:          make(chan struct{}),
	}
}

// tell pushes envelope into the mailbox and schedules a drain
func (c *cell) tell(ctx context.Context, envelope *Envelope) error {
	if err := c.mailbox.enqueue(ctx, envelope); err != nil {
		return err
	}
	c.schedule()
	return nil
}

// schedule submits a drain loop unless one is already scheduled
func (c *cell) schedule() {
	if !c.processing.CompareAndSwap(idle, busy) {
		return
	}
	if err := c.env.workers.Submit(c.drain); err != nil {
		c.processing.Store(idle)
		c.logger.Warnf("failed to schedule actor %s: %v", c.id, err)
	}
}

func (c *cell) requestStop() {
	c.stopRequested.Store(true)
	c.schedule()
}

// drain runs one turn: OnStart on the first turn, then up to throughput
// messages. A stop request is honored between two messages.
func (c *cell) drain() {
	if !c.started {
		c.started = true
		if err := c.start(); err != nil {
			c.fail(err)
			return
		}
	}

	for range c.env.throughput {
		if c.stopRequested.Load() {
			c.terminate()
			return
		}

		envelope, ok := c.mailbox.dequeue()
		if !ok {
			break
		}

		if err := c.handle(envelope); err != nil {
			c.fail(err)
			return
		}
	}

	if c.stopRequested.Load() {
		c.terminate()
		return
	}

	if err := c.refreshSummary(); err != nil {
		c.fail(err)
		return
	}

	c.processing.Store(idle)
	if !c.mailbox.isEmpty() || c.stopRequested.Load() {
		c.schedule()
	}
}

func (c *cell) start() (err error) {
	defer c.recovery(&err)
	if err := c.behavior.OnStart(newContext(c.env.ctx, c)); err != nil {
		return err
	}
	c.startedOK = true
	c.logger.Debugf("actor %s started", c.id)
	c.env.publish(&ActorStarted{ID: c.id, Kind: c.kind})
	return nil
}

func (c *cell) handle(envelope *Envelope) (err error) {
	defer c.recovery(&err)
	c.processed.Inc()
	c.env.processed.Inc()
	return c.behavior.OnMessage(newReceiveContext(c.env.ctx, c, envelope))
}

func (c *cell) refreshSummary() (err error) {
	summarizer, ok := c.behavior.(Summarizer)
	if !ok {
		return nil
	}

	defer c.recovery(&err)
	summary := summarizer.Summary()
	c.mu.Lock()
	c.summary = summary
	c.mu.Unlock()
	return nil
}

func (c *cell) stop() (err error) {
	defer c.recovery(&err)
	return c.behavior.OnStop(newContext(c.env.ctx, c))
}

// recovery turns a panic of a behavior hook into a PanicError
func (c *cell) recovery(err *error) {
	r := recover()
	if r == nil {
		return
	}

	if e, ok := r.(error); ok {
		var pe *gerrors.PanicError
		if errors.As(e, &pe) {
			*err = pe
			return
		}

		pc, fn, line, _ := runtime.Caller(2)
		*err = gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", e, runtime.FuncForPC(pc).Name(), fn, line))
		return
	}

	pc, fn, line, _ := runtime.Caller(2)
	*err = gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
}

// fail isolates the actor: the failure is reported and the actor stopped
func (c *cell) fail(cause error) {
	failure := gerrors.NewActorFailure(string(c.id), cause)
	c.logger.Error(failure)
	c.env.failures.Inc()
	c.env.publish(&ActorFailed{ID: c.id, Kind: c.kind, Err: failure})
	c.terminate()
}

// terminate is the last step of the drain loop of a stopping actor. The
// processing guard stays busy so that no drain runs afterwards.
func (c *cell) terminate() {
	if c.startedOK {
		if err := c.stop(); err != nil {
			c.logger.Errorf("actor %s failed to stop cleanly: %v", c.id, err)
		}
	}

	c.env.deregister(c)
	if dropped := c.mailbox.dispose(); dropped > 0 {
		c.logger.Debugf("actor %s dropped %d pending messages", c.id, dropped)
	}
	c.env.publish(&ActorStopped{ID: c.id, Kind: c.kind})
	close(c.done)
}

func (c *cell) info() ActorInfo {
	c.mu.RLock()
	summary := c.summary
	c.mu.RUnlock()
	return ActorInfo{
		ID:         c.id,
		Kind:       c.kind,
		Summary:    summary,
		Processed:  c.processed.Load(),
		MailboxLen: c.mailbox.len(),
	}
}

// ActorInfo describes an active actor
type ActorInfo struct {
	ID   address.ActorID
	Kind string
	// Summary is the last value returned by the behavior's Summarizer
	Summary    any
	Processed  uint64
	MailboxLen int64
}
