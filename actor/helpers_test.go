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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/internal/eventstream"
	"github.com/tochemey/netactor/log"
	"github.com/tochemey/netactor/remote"
)

const waitFor = 5 * time.Second

func newEnvironment(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	ctx := context.Background()
	env, err := New(append([]Option{WithLogger(log.DiscardLogger), WithShutdownTimeout(5 * time.Second)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, env.Start(ctx))
	t.Cleanup(func() {
		_ = env.Shutdown(ctx)
	})
	return env
}

func newRemoteEnvironment(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	config := remote.NewConfig("127.0.0.1", 0,
		remote.WithHeartbeat(100*time.Millisecond, 3),
		remote.WithReconnect(3, 20*time.Millisecond, 100*time.Millisecond),
		remote.WithUnreachableCooldown(500*time.Millisecond))
	return newEnvironment(t, append([]Option{WithRemoting(config)}, opts...)...)
}

type received struct {
	sender address.ActorRef
	msg    any
}

// recorder pushes every message it receives to a channel
type recorder struct {
	messages chan received
	started  *atomic.Bool
	stopped  *atomic.Bool
}

func newRecorder() *recorder {
	return &recorder{
		messages: make(chan received, 1024),
		started:  atomic.NewBool(false),
		stopped:  atomic.NewBool(false),
	}
}

func (x *recorder) OnStart(*Context) error {
	x.started.Store(true)
	return nil
}

func (x *recorder) OnMessage(ctx *ReceiveContext) error {
	x.messages <- received{sender: ctx.Sender(), msg: ctx.Message()}
	return nil
}

func (x *recorder) OnStop(*Context) error {
	x.stopped.Store(true)
	return nil
}

func (x *recorder) next(t *testing.T) received {
	t.Helper()
	select {
	case r := <-x.messages:
		return r
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for a message")
		return received{}
	}
}

func (x *recorder) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case r := <-x.messages:
		t.Fatalf("unexpected message %v", r.msg)
	case <-time.After(within):
	}
}

// forward asks a sender actor to send msg to the actor at to
type forward struct {
	to  address.ActorRef
	msg any
}

// sender sends on request so that the target sees it as sender, and
// records everything else it receives
type sender struct {
	*recorder
	errs chan error
}

func newSender() *sender {
	return &sender{recorder: newRecorder(), errs: make(chan error, 64)}
}

func (x *sender) OnStart(*Context) error { return nil }

func (x *sender) OnMessage(ctx *ReceiveContext) error {
	if req, ok := ctx.Message().(*forward); ok {
		x.errs <- ctx.Send(req.to, req.msg)
		return nil
	}
	return x.recorder.OnMessage(ctx)
}

func (x *sender) sendErr(t *testing.T) error {
	t.Helper()
	select {
	case err := <-x.errs:
		return err
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for a send")
		return nil
	}
}

func (x *sender) OnStop(*Context) error { return nil }

// watcher collects the events of an Environment
type watcher struct {
	mu   sync.Mutex
	sub  eventstream.Subscriber
	seen []any
}

func watch(t *testing.T, env *Environment) *watcher {
	t.Helper()
	sub, err := env.Subscribe()
	require.NoError(t, err)
	return &watcher{sub: sub}
}

func (w *watcher) events() []any {
	w.mu.Lock()
	defer w.mu.Unlock()
	for msg := range w.sub.Iterator() {
		w.seen = append(w.seen, msg.Payload())
	}
	return append([]any(nil), w.seen...)
}

// awaitEvent waits for the first event of type T matching match
func awaitEvent[T any](t *testing.T, w *watcher, match func(T) bool) T {
	t.Helper()
	var found T
	require.Eventually(t, func() bool {
		for _, event := range w.events() {
			if e, ok := event.(T); ok && (match == nil || match(e)) {
				found = e
				return true
			}
		}
		return false
	}, waitFor, 10*time.Millisecond)
	return found
}

func countEvents[T any](w *watcher, match func(T) bool) int {
	count := 0
	for _, event := range w.events() {
		if e, ok := event.(T); ok && (match == nil || match(e)) {
			count++
		}
	}
	return count
}

func waitStopped(t *testing.T, env *Environment, ref address.ActorRef) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := env.Lookup(ref.ID())
		return !ok
	}, waitFor, 10*time.Millisecond)
}

var errBoom = errors.New("boom")
