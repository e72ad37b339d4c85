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
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/backpressure"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/log"
)

// pinger answers ping with pong
type pinger struct{}

func (p *pinger) OnStart(*Context) error { return nil }

func (p *pinger) OnMessage(ctx *ReceiveContext) error {
	if msg, ok := ctx.Message().(*wrapperspb.StringValue); ok && msg.GetValue() == "ping" {
		return ctx.Reply(wrapperspb.String("pong"))
	}
	return nil
}

func (p *pinger) OnStop(*Context) error { return nil }

// exclusive records any overlap between two of its own invocations
type exclusive struct {
	inflight    *atomic.Int32
	overlaps    *atomic.Int32
	handled     *atomic.Int64
	unprotected int
}

func (x *exclusive) OnStart(*Context) error { return nil }

func (x *exclusive) OnMessage(*ReceiveContext) error {
	if x.inflight.Inc() > 1 {
		x.overlaps.Inc()
	}
	x.unprotected++
	time.Sleep(time.Microsecond)
	x.inflight.Dec()
	x.handled.Inc()
	return nil
}

func (x *exclusive) OnStop(*Context) error { return nil }

// counter counts its messages and exposes the count as summary
type counter struct {
	count int
}

func (x *counter) OnStart(*Context) error { return nil }

func (x *counter) OnMessage(*ReceiveContext) error {
	x.count++
	return nil
}

func (x *counter) OnStop(*Context) error { return nil }

func (x *counter) Summary() any { return x.count }

// failing fails in the hook named by its fields
type failing struct {
	onStart   error
	onMessage error
	panics    bool
	stopped   *atomic.Bool
}

func (x *failing) OnStart(*Context) error { return x.onStart }

func (x *failing) OnMessage(*ReceiveContext) error {
	if x.panics {
		panic("kaboom")
	}
	return x.onMessage
}

func (x *failing) OnStop(*Context) error {
	if x.stopped != nil {
		x.stopped.Store(true)
	}
	return nil
}

// blocker parks in OnMessage until released
type blocker struct {
	entered chan struct{}
	release chan struct{}
	handled *atomic.Int32
}

func (x *blocker) OnStart(*Context) error { return nil }

func (x *blocker) OnMessage(*ReceiveContext) error {
	x.handled.Inc()
	select {
	case x.entered <- struct{}{}:
	default:
	}
	<-x.release
	return nil
}

func (x *blocker) OnStop(*Context) error { return nil }

func TestEnvironment(t *testing.T) {
	ctx := context.Background()

	t.Run("ping pong", func(t *testing.T) {
		env := newEnvironment(t)

		pong, err := env.Spawn(ctx, &pinger{})
		require.NoError(t, err)
		client := newSender()
		clientRef, err := env.Spawn(ctx, client)
		require.NoError(t, err)

		require.NoError(t, env.Send(ctx, clientRef, &forward{to: pong, msg: wrapperspb.String("ping")}))
		require.NoError(t, client.sendErr(t))

		reply := client.next(t)
		assert.Equal(t, "pong", reply.msg.(*wrapperspb.StringValue).GetValue())
		assert.True(t, reply.sender.Equals(pong))
	})

	t.Run("keeps the send order of one sender", func(t *testing.T) {
		env := newEnvironment(t, WithThroughput(7))

		rec := newRecorder()
		ref, err := env.Spawn(ctx, rec)
		require.NoError(t, err)

		const count = 1000
		for i := range count {
			require.NoError(t, env.Send(ctx, ref, i))
		}
		for i := range count {
			require.Equal(t, i, rec.next(t).msg)
		}
	})

	t.Run("runs at most one invocation at a time", func(t *testing.T) {
		env := newEnvironment(t, WithWorkers(8), WithThroughput(3))

		behavior := &exclusive{
			inflight: atomic.NewInt32(0),
			overlaps: atomic.NewInt32(0),
			handled:  atomic.NewInt64(0),
		}
		ref, err := env.Spawn(ctx, behavior)
		require.NoError(t, err)

		const senders, perSender = 16, 100
		var wg sync.WaitGroup
		for range senders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perSender {
					assert.NoError(t, env.Send(ctx, ref, i))
				}
			}()
		}
		wg.Wait()

		require.Eventually(t, func() bool {
			return behavior.handled.Load() == senders*perSender
		}, waitFor, 10*time.Millisecond)
		assert.Zero(t, behavior.overlaps.Load())

		infos := env.ListActive()
		require.Len(t, infos, 1)
		assert.EqualValues(t, senders*perSender, infos[0].Processed)
	})

	t.Run("N actors and one message each give N invocations", func(t *testing.T) {
		env := newEnvironment(t)

		const actors = 300
		var invocations atomic.Int64
		refs := make([]address.ActorRef, 0, actors)
		for range actors {
			ref, err := env.Spawn(ctx, NewFuncBehavior(func(*ReceiveContext) error {
				invocations.Inc()
				return nil
			}))
			require.NoError(t, err)
			refs = append(refs, ref)
		}
		for _, ref := range refs {
			require.NoError(t, env.Send(ctx, ref, "hello"))
		}

		require.Eventually(t, func() bool {
			return invocations.Load() == actors
		}, waitFor, 10*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		assert.EqualValues(t, actors, invocations.Load())
	})

	t.Run("a panic fails only that actor", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		stopped := atomic.NewBool(false)
		bad, err := env.Spawn(ctx, &failing{panics: true, stopped: stopped})
		require.NoError(t, err)
		healthy := newRecorder()
		good, err := env.Spawn(ctx, healthy)
		require.NoError(t, err)

		require.NoError(t, env.Send(ctx, bad, "trigger"))
		failed := awaitEvent(t, w, func(e *ActorFailed) bool { return e.ID == bad.ID() })

		var panicErr *gerrors.PanicError
		require.ErrorAs(t, failed.Err, &panicErr)
		var failure *gerrors.ActorFailure
		require.ErrorAs(t, failed.Err, &failure)
		assert.Equal(t, string(bad.ID()), failure.ActorID())

		waitStopped(t, env, bad)
		assert.True(t, stopped.Load())
		require.ErrorIs(t, env.Send(ctx, bad, "again"), gerrors.ErrActorNotFound)

		require.NoError(t, env.Send(ctx, good, "still alive"))
		assert.Equal(t, "still alive", healthy.next(t).msg)
	})

	t.Run("an error from OnMessage fails the actor", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		ref, err := env.Spawn(ctx, &failing{onMessage: errBoom})
		require.NoError(t, err)
		require.NoError(t, env.Send(ctx, ref, "trigger"))

		failed := awaitEvent(t, w, func(e *ActorFailed) bool { return e.ID == ref.ID() })
		require.ErrorIs(t, failed.Err, errBoom)
		waitStopped(t, env, ref)
		awaitEvent(t, w, func(e *ActorStopped) bool { return e.ID == ref.ID() })
	})

	t.Run("an OnStart failure skips OnStop", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		stopped := atomic.NewBool(false)
		ref, err := env.Spawn(ctx, &failing{onStart: errBoom, stopped: stopped})
		require.NoError(t, err)

		failed := awaitEvent(t, w, func(e *ActorFailed) bool { return e.ID == ref.ID() })
		require.ErrorIs(t, failed.Err, errBoom)
		waitStopped(t, env, ref)
		assert.False(t, stopped.Load())
		assert.Zero(t, countEvents(w, func(e *ActorStarted) bool { return e.ID == ref.ID() }))
	})

	t.Run("stop finishes the message in flight and drops the rest", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		behavior := &blocker{entered: make(chan struct{}, 1), release: make(chan struct{}), handled: atomic.NewInt32(0)}
		ref, err := env.Spawn(ctx, behavior)
		require.NoError(t, err)

		for i := range 5 {
			require.NoError(t, env.Send(ctx, ref, i))
		}
		<-behavior.entered

		require.NoError(t, env.Stop(ctx, ref))
		close(behavior.release)

		awaitEvent(t, w, func(e *ActorStopped) bool { return e.ID == ref.ID() })
		waitStopped(t, env, ref)
		assert.EqualValues(t, 1, behavior.handled.Load())
		require.ErrorIs(t, env.Stop(ctx, ref), gerrors.ErrActorNotFound)
	})

	t.Run("StopSelf", func(t *testing.T) {
		env := newEnvironment(t)

		ref, err := env.Spawn(ctx, NewFuncBehavior(func(ctx *ReceiveContext) error {
			ctx.StopSelf()
			return nil
		}))
		require.NoError(t, err)
		require.NoError(t, env.Send(ctx, ref, "bye"))
		waitStopped(t, env, ref)
	})

	t.Run("lifecycle hooks run", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		rec := newRecorder()
		ref, err := env.Spawn(ctx, rec)
		require.NoError(t, err)
		awaitEvent(t, w, func(e *ActorStarted) bool { return e.ID == ref.ID() })
		assert.True(t, rec.started.Load())

		require.NoError(t, env.Stop(ctx, ref))
		awaitEvent(t, w, func(e *ActorStopped) bool { return e.ID == ref.ID() })
		assert.True(t, rec.stopped.Load())
	})

	t.Run("ListActive returns sorted summaries", func(t *testing.T) {
		env := newEnvironment(t)

		refs := make([]address.ActorRef, 0, 12)
		for range 12 {
			ref, err := env.Spawn(ctx, &counter{})
			require.NoError(t, err)
			refs = append(refs, ref)
		}
		named, err := env.Spawn(ctx, &counter{}, WithActorID("alpha"))
		require.NoError(t, err)

		for i, ref := range refs {
			for range i {
				require.NoError(t, env.Send(ctx, ref, "tick"))
			}
		}
		require.NoError(t, env.Send(ctx, named, "tick"))

		require.Eventually(t, func() bool {
			infos := env.ListActive()
			for i, info := range infos[:len(refs)] {
				if info.Summary != i && !(i == 0 && info.Summary == nil) {
					return false
				}
			}
			return infos[len(refs)].Summary == 1
		}, waitFor, 10*time.Millisecond)

		infos := env.ListActive()
		require.Len(t, infos, 13)
		for i, info := range infos[:12] {
			assert.Equal(t, address.ActorID(strconv.Itoa(i+1)), info.ID)
		}
		assert.Equal(t, address.ActorID("alpha"), infos[12].ID)

		// the snapshot is a copy
		infos[0].ID = "mutated"
		assert.NotEqual(t, address.ActorID("mutated"), env.ListActive()[0].ID)
	})

	t.Run("named actors", func(t *testing.T) {
		env := newEnvironment(t)

		ref, err := env.Spawn(ctx, newRecorder(), WithActorID("worker"))
		require.NoError(t, err)
		assert.Equal(t, address.Local("worker"), ref)

		_, err = env.Spawn(ctx, newRecorder(), WithActorID("worker"))
		require.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)

		_, err = env.Spawn(ctx, newRecorder(), WithActorID("42"))
		require.ErrorIs(t, err, gerrors.ErrInvalidActorID)

		found, ok := env.Lookup("worker")
		require.True(t, ok)
		assert.Equal(t, ref, found)
		_, ok = env.Lookup("nobody")
		assert.False(t, ok)
	})

	t.Run("ids of stopped actors are never reused", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		ref, err := env.Spawn(ctx, newRecorder(), WithActorID("worker"))
		require.NoError(t, err)
		require.NoError(t, env.Stop(ctx, ref))
		waitStopped(t, env, ref)

		_, err = env.Spawn(ctx, newRecorder(), WithActorID("worker"))
		require.ErrorIs(t, err, gerrors.ErrActorAlreadyExists)

		err = env.Send(ctx, ref, wrapperspb.String("for the stopped actor"))
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
		awaitEvent(t, w, func(e *DeadLetter) bool { return e.Receiver.Equals(ref) })
	})

	t.Run("kinds spawn locally without peers", func(t *testing.T) {
		rec := newRecorder()
		env := newEnvironment(t, WithKind("recorder", func() Behavior { return rec }))

		ref, err := env.SpawnKind(ctx, "recorder")
		require.NoError(t, err)
		assert.True(t, ref.IsLocal())
		require.NoError(t, env.Send(ctx, ref, "hi"))
		assert.Equal(t, "hi", rec.next(t).msg)

		_, err = env.SpawnKind(ctx, "unknown")
		require.ErrorIs(t, err, gerrors.ErrKindNotRegistered)
	})

	t.Run("unknown actor", func(t *testing.T) {
		env := newEnvironment(t)
		w := watch(t, env)

		require.ErrorIs(t, env.Send(ctx, address.Local("ghost"), "boo"), gerrors.ErrActorNotFound)
		letter := awaitEvent(t, w, (func(*DeadLetter) bool)(nil))
		assert.Equal(t, "boo", letter.Message)
		require.ErrorIs(t, letter.Reason, gerrors.ErrActorNotFound)
	})

	t.Run("mailbox backpressure fails fast", func(t *testing.T) {
		env := newEnvironment(t, WithMailbox(2, backpressure.NewFailFast()))

		behavior := &blocker{entered: make(chan struct{}, 1), release: make(chan struct{}), handled: atomic.NewInt32(0)}
		ref, err := env.Spawn(ctx, behavior)
		require.NoError(t, err)

		require.NoError(t, env.Send(ctx, ref, 0))
		<-behavior.entered
		require.NoError(t, env.Send(ctx, ref, 1))
		require.NoError(t, env.Send(ctx, ref, 2))
		require.ErrorIs(t, env.Send(ctx, ref, 3), gerrors.ErrMailboxFull)
		close(behavior.release)
	})

	t.Run("mailbox backpressure blocks with timeout", func(t *testing.T) {
		env := newEnvironment(t)

		behavior := &blocker{entered: make(chan struct{}, 1), release: make(chan struct{}), handled: atomic.NewInt32(0)}
		ref, err := env.Spawn(ctx, behavior, WithActorMailbox(1, backpressure.NewBlockWithTimeout(50*time.Millisecond)))
		require.NoError(t, err)

		require.NoError(t, env.Send(ctx, ref, 0))
		<-behavior.entered
		require.NoError(t, env.Send(ctx, ref, 1))

		start := time.Now()
		require.ErrorIs(t, env.Send(ctx, ref, 2), gerrors.ErrMailboxFull)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
		close(behavior.release)
	})

	t.Run("Broadcast reaches every local actor", func(t *testing.T) {
		env := newEnvironment(t)

		recorders := make([]*recorder, 5)
		for i := range recorders {
			recorders[i] = newRecorder()
			_, err := env.Spawn(ctx, recorders[i])
			require.NoError(t, err)
		}
		require.NoError(t, env.Broadcast(ctx, "all hands"))
		for _, rec := range recorders {
			assert.Equal(t, "all hands", rec.next(t).msg)
		}
	})

	t.Run("actors spawn and stop actors", func(t *testing.T) {
		env := newEnvironment(t)

		child := newRecorder()
		children := make(chan address.ActorRef, 1)
		parent, err := env.Spawn(ctx, NewFuncBehavior(func(ctx *ReceiveContext) error {
			switch ctx.Message() {
			case "spawn":
				ref, err := ctx.Spawn(child)
				if err != nil {
					return err
				}
				children <- ref
			case "stop":
				return ctx.Stop(<-children)
			}
			return nil
		}))
		require.NoError(t, err)

		require.NoError(t, env.Send(ctx, parent, "spawn"))
		require.Eventually(t, func() bool { return len(env.ListActive()) == 2 }, waitFor, 10*time.Millisecond)
		require.NoError(t, env.Send(ctx, parent, "stop"))
		require.Eventually(t, func() bool { return child.stopped.Load() }, waitFor, 10*time.Millisecond)
	})

	t.Run("Reply without sender", func(t *testing.T) {
		env := newEnvironment(t)
		errs := make(chan error, 1)
		ref, err := env.Spawn(ctx, NewFuncBehavior(func(ctx *ReceiveContext) error {
			errs <- ctx.Reply("nobody listens")
			return nil
		}))
		require.NoError(t, err)
		require.NoError(t, env.Send(ctx, ref, "hello"))
		require.ErrorIs(t, <-errs, gerrors.ErrNoSender)
	})

	t.Run("invalid use", func(t *testing.T) {
		env, err := New(WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		_, err = env.Spawn(ctx, newRecorder())
		require.ErrorIs(t, err, gerrors.ErrEnvironmentNotStarted)
		require.ErrorIs(t, env.Send(ctx, address.Local("1"), "x"), gerrors.ErrEnvironmentNotStarted)
		require.ErrorIs(t, env.Shutdown(ctx), gerrors.ErrEnvironmentNotStarted)

		require.NoError(t, env.Start(ctx))
		_, err = env.Spawn(ctx, nil)
		require.Error(t, err)
		require.Error(t, env.Send(ctx, address.Local("1"), nil))
		require.ErrorIs(t, env.Send(ctx, address.NoSender(), "x"), gerrors.ErrInvalidActorRef)
		require.ErrorIs(t, env.Send(ctx, address.Remote(address.NewNode("127.0.0.1", 1), "1"), "x"), gerrors.ErrRemotingDisabled)
		_, err = env.SpawnKindOn(ctx, address.NewNode("127.0.0.1", 1), "any")
		require.ErrorIs(t, err, gerrors.ErrRemotingDisabled)
		assert.Nil(t, env.Connections())
		assert.True(t, env.Node().IsZero())

		require.NoError(t, env.Shutdown(ctx))
		_, err = env.Spawn(ctx, newRecorder())
		require.ErrorIs(t, err, gerrors.ErrEnvironmentStopped)
		require.ErrorIs(t, env.Send(ctx, address.Local("1"), "x"), gerrors.ErrEnvironmentStopped)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := New(WithLogger(log.DiscardLogger), WithWorkers(0))
		require.Error(t, err)
		_, err = New(WithLogger(log.DiscardLogger), WithMailbox(0, backpressure.NewFailFast()))
		require.Error(t, err)
		_, err = New(WithLogger(log.DiscardLogger), WithPeers(address.NewNode("127.0.0.1", 9000)))
		require.Error(t, err)
		_, err = New(WithLogger(log.DiscardLogger), WithKind("", func() Behavior { return newRecorder() }))
		require.Error(t, err)
	})

	t.Run("shutdown stops every actor", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		env, err := New(WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		require.NoError(t, env.Start(ctx))

		recorders := make([]*recorder, 10)
		for i := range recorders {
			recorders[i] = newRecorder()
			_, err := env.Spawn(ctx, recorders[i], WithActorID(address.ActorID(fmt.Sprintf("actor-%d", i))))
			require.NoError(t, err)
		}

		require.NoError(t, env.Shutdown(ctx))
		for _, rec := range recorders {
			assert.True(t, rec.stopped.Load())
		}
		assert.Empty(t, env.ListActive())
	})
}

func TestCompareIDs(t *testing.T) {
	assert.Negative(t, compareIDs("2", "10"))
	assert.Positive(t, compareIDs("10", "2"))
	assert.Zero(t, compareIDs("7", "7"))
	assert.Negative(t, compareIDs("99", "alpha"))
	assert.Positive(t, compareIDs("beta", "1"))
	assert.Negative(t, compareIDs("alpha", "beta"))
}
