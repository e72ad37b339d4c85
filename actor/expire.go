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

	"go.uber.org/multierr"

	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/wire"
)

// Expire ends the Environment's run: every local actor is stopped, every
// known peer is told to expire as well and Done is closed. The Environment
// keeps serving its connections until Shutdown; spawning is refused.
func (env *Environment) Expire(ctx context.Context) error {
	if !env.started.Load() {
		return gerrors.ErrEnvironmentNotStarted
	}
	return env.expire(ctx, false)
}

// Done is closed once the Environment expired
func (env *Environment) Done() <-chan struct{} {
	return env.expired
}

// WaitUntilExpired blocks until the Environment expired or ctx ends
func (env *Environment) WaitUntilExpired(ctx context.Context) error {
	select {
	case <-env.expired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// expire runs once. An expiration received from a peer is not propagated.
func (env *Environment) expire(ctx context.Context, remote bool) error {
	var err error
	env.expireOnce.Do(func() {
		env.expiring.Store(true)
		for _, c := range env.registry.Snapshot() {
			c.requestStop()
		}

		if !remote && env.manager != nil {
			for _, peer := range env.knownPeers() {
				if e := env.manager.Send(ctx, peer, &wire.Frame{Kind: wire.KindExpire, SourceNode: env.node.String()}); e != nil {
					env.logger.Warnf("failed to propagate expiration to %s: %v", peer, e)
					err = multierr.Append(err, e)
				}
			}
		}

		close(env.expired)
		env.logger.Infof("environment expired (node=%s)", env.node)
		env.publish(&Expired{Remote: remote})
	})
	return err
}
