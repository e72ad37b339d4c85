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

// Package testkit helps testing behaviors: it runs a local Environment and
// hands out probes that record what they receive.
package testkit

import (
	"context"
	"testing"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/netactor/actor"
	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/log"
)

// TestKit defines an actor test kit
type TestKit struct {
	env     *actor.Environment
	kt      *testing.T
	logger  log.Logger
	envOpts []actor.Option
	started *atomic.Bool
}

// New creates and starts a TestKit
func New(ctx context.Context, t *testing.T, opts ...Option) *TestKit {
	kit := &TestKit{
		kt:      t,
		logger:  log.DiscardLogger,
		started: atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(kit)
	}

	envOpts := append([]actor.Option{
		actor.WithLogger(kit.logger),
		actor.WithShutdownTimeout(5 * time.Second),
	}, kit.envOpts...)

	env, err := actor.New(envOpts...)
	if err != nil {
		t.Fatal(err.Error())
	}

	if err := env.Start(ctx); err != nil {
		t.Fatal(err.Error())
	}

	kit.env = env
	kit.started.Store(true)
	return kit
}

// Environment returns the testkit Environment
func (k *TestKit) Environment() *actor.Environment {
	return k.env
}

// Spawn starts an actor and fails the test on error
func (k *TestKit) Spawn(ctx context.Context, behavior actor.Behavior, opts ...actor.SpawnOption) address.ActorRef {
	ref, err := k.env.Spawn(ctx, behavior, opts...)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return ref
}

// NewProbe creates a test probe
func (k *TestKit) NewProbe(ctx context.Context) Probe {
	testProbe, err := newProbe(ctx, k.env, k.kt)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	return testProbe
}

// Shutdown stops the test kit
func (k *TestKit) Shutdown(ctx context.Context) {
	if !k.started.CompareAndSwap(true, false) {
		return
	}
	if err := k.env.Shutdown(ctx); err != nil {
		k.kt.Fatal(err.Error())
	}
}
