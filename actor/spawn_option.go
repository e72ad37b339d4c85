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
	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/backpressure"
)

type spawnConfig struct {
	id              address.ActorID
	mailboxCapacity int
	mailboxPolicy   *backpressure.Policy
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := new(spawnConfig)
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption configures a single spawn
type SpawnOption interface {
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

type spawnOption func(config *spawnConfig)

func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithActorID spawns the actor under a user chosen id. The id must start
// with a letter and may contain letters, digits, '-', '_' and '.'. An id
// stays taken after its actor stopped, so that stale references never reach
// a newer actor.
func WithActorID(id address.ActorID) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.id = id
	})
}

// WithActorMailbox overrides the Environment's mailbox settings for one actor
func WithActorMailbox(capacity int, policy backpressure.Policy) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.mailboxCapacity = capacity
		config.mailboxPolicy = &policy
	})
}
