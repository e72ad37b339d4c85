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

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/wire"
)

// query is a pending Find waiting for the answers of the peers
type query struct {
	answers chan queryAnswer
}

type queryAnswer struct {
	node  address.Node
	found bool
}

// answer never blocks: every peer answers a query at most once and the
// channel has room for all of them
func (q *query) answer(node address.Node, found bool) {
	select {
	case q.answers <- queryAnswer{node: node, found: found}:
	default:
	}
}

// Find returns the reference of the actor named id. The local registry is
// looked at first; otherwise every known peer is asked and the first one
// hosting the actor wins. Find fails with ErrActorNotFound once every peer
// answered without a hit, or with the context error when ctx ends first.
func (env *Environment) Find(ctx context.Context, id address.ActorID) (address.ActorRef, error) {
	if !env.started.Load() {
		return address.NoSender(), gerrors.ErrEnvironmentNotStarted
	}
	if ref, ok := env.Lookup(id); ok {
		return ref, nil
	}
	// peers are only asked for user chosen ids
	if err := address.ValidateName(id); err != nil {
		return address.NoSender(), err
	}
	if env.manager == nil {
		return address.NoSender(), gerrors.ErrActorNotFound
	}

	peers := env.knownPeers()
	if len(peers) == 0 {
		return address.NoSender(), gerrors.ErrActorNotFound
	}

	correlation := env.queryID.Inc()
	q := &query{answers: make(chan queryAnswer, len(peers))}
	env.queries.Set(correlation, q)
	defer env.queries.Delete(correlation)

	waiting := 0
	for _, peer := range peers {
		err := env.manager.Send(ctx, peer, &wire.Frame{
			Kind:        wire.KindQuery,
			SourceNode:  env.node.String(),
			Correlation: correlation,
			Destination: string(id),
		})
		if err != nil {
			env.logger.Debugf("failed to query %s for %s: %v", peer, id, err)
			continue
		}
		waiting++
	}

	for waiting > 0 {
		select {
		case a := <-q.answers:
			if a.found {
				return address.Remote(a.node, id), nil
			}
			waiting--
		case <-ctx.Done():
			return address.NoSender(), ctx.Err()
		}
	}
	return address.NoSender(), gerrors.ErrActorNotFound
}

// answerQuery tells peer whether the actor it looks for lives here. It runs
// off the connection's read loop.
func (env *Environment) answerQuery(peer address.Node, frame *wire.Frame) {
	result := &wire.Frame{
		Kind:        wire.KindQueryResult,
		SourceNode:  env.node.String(),
		Correlation: frame.Correlation,
	}
	if _, ok := env.registry.Get(frame.Destination); ok {
		result.Destination = frame.Destination
	}
	if err := env.manager.Send(env.ctx, peer, result); err != nil {
		env.logger.Warnf("failed to answer the query of %s for %s: %v", peer, frame.Destination, err)
	}
}

// queryAnswered routes a query result to the Find waiting for it
func (env *Environment) queryAnswered(peer address.Node, frame *wire.Frame, found bool) {
	if q, ok := env.queries.Get(frame.Correlation); ok {
		q.answer(peer, found)
	}
}
