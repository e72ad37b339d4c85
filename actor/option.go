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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/backpressure"
	"github.com/tochemey/netactor/log"
	"github.com/tochemey/netactor/remote"
)

// Option configures an Environment
type Option interface {
	// Apply sets the Option value of a config.
	Apply(env *Environment)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(env *Environment)

// Apply applies the Environment's option
func (f OptionFunc) Apply(env *Environment) {
	f(env)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(env *Environment) {
		env.logger = logger
	})
}

// WithWorkers sets the number of goroutines running actor turns
func WithWorkers(workers int) Option {
	return OptionFunc(func(env *Environment) {
		env.workerCount = workers
	})
}

// WithThroughput sets how many messages an actor handles per turn before
// yielding its worker
func WithThroughput(throughput int) Option {
	return OptionFunc(func(env *Environment) {
		env.throughput = throughput
	})
}

// WithMailbox sets the default mailbox capacity and overflow policy
func WithMailbox(capacity int, policy backpressure.Policy) Option {
	return OptionFunc(func(env *Environment) {
		env.mailboxCapacity = capacity
		env.mailboxPolicy = policy
	})
}

// WithRemoting enables remoting with the given configuration
func WithRemoting(config *remote.Config) Option {
	return OptionFunc(func(env *Environment) {
		env.remoteConfig = config
	})
}

// WithPeers sets the static peer list. Duplicates are ignored.
func WithPeers(peers ...address.Node) Option {
	return OptionFunc(func(env *Environment) {
		for _, peer := range peers {
			env.peerSet.Add(peer)
		}
	})
}

// WithKind registers a kind that SpawnKind can instantiate, locally or on
// behalf of a peer
func WithKind(name string, factory func() Behavior) Option {
	return OptionFunc(func(env *Environment) {
		env.kinds[name] = factory
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider. The global one is
// used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(env *Environment) {
		env.meterProvider = provider
	})
}

// WithShutdownTimeout bounds how long Shutdown waits for actors to stop
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(env *Environment) {
		env.shutdownTimeout = timeout
	})
}
