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
	"errors"
	"fmt"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/netchannel"
	"github.com/tochemey/netactor/internal/wire"
)

// remoting turns the frames of the connection manager into local actions
type remoting struct {
	env *Environment
}

var _ netchannel.Handler = (*remoting)(nil)

// Deliver implements netchannel.Handler
func (r *remoting) Deliver(peer address.Node, frame *wire.Frame) error {
	env := r.env
	switch frame.Kind {
	case wire.KindData:
		sender := remoteSender(peer, frame)
		receiver := address.Local(address.ActorID(frame.Destination))
		msg, err := env.remoteConfig.Decode(frame.TypeTag, frame.Payload)
		if err != nil {
			env.deadLetter(sender, receiver, frame.TypeTag, err)
			return err
		}

		envelope := &Envelope{
			Sender:   sender,
			Receiver: receiver.ID(),
			Sequence: frame.Sequence,
			Message:  msg,
		}
		if err := env.tellLocal(env.ctx, envelope); err != nil && !errors.Is(err, gerrors.ErrActorNotFound) {
			env.deadLetter(sender, receiver, msg, err)
		}

	case wire.KindSpawn:
		r.spawn(peer, frame)

	case wire.KindStop:
		if c, ok := env.registry.Get(frame.Destination); ok {
			c.requestStop()
		}

	case wire.KindBroadcast:
		msg, err := env.remoteConfig.Decode(frame.TypeTag, frame.Payload)
		if err != nil {
			env.deadLetter(remoteSender(peer, frame), address.NoSender(), frame.TypeTag, err)
			return err
		}

		sender := remoteSender(peer, frame)
		for _, c := range env.registry.Snapshot() {
			envelope := &Envelope{Sender: sender, Receiver: c.id, Sequence: frame.Sequence, Message: msg}
			if err := c.tell(env.ctx, envelope); err != nil {
				env.deadLetter(sender, address.Local(c.id), msg, err)
			}
		}

	case wire.KindExpire:
		env.logger.Infof("expiration requested by %s", peer)
		env.expire(env.ctx, true)

	case wire.KindQuery:
		// answering sends on the outbox of peer, which must not happen under
		// the inbound lock held here
		if err := env.workers.Submit(func() { env.answerQuery(peer, frame) }); err != nil {
			env.logger.Warnf("query of %s for %s dropped: %v", peer, frame.Destination, err)
		}

	case wire.KindQueryResult:
		env.queryAnswered(peer, frame, frame.Destination != "")
	}
	return nil
}

func (r *remoting) spawn(peer address.Node, frame *wire.Frame) {
	env := r.env
	id := address.ActorID(frame.Destination)

	err := env.canSpawn()
	if err == nil {
		factory, ok := env.kinds[frame.KindName]
		if !ok {
			err = fmt.Errorf("%w: %s", gerrors.ErrKindNotRegistered, frame.KindName)
		} else {
			_, err = env.register(id, frame.KindName, factory(), newSpawnConfig())
		}
	}

	if err != nil {
		env.logger.Errorf("spawn of %s (kind=%s) requested by %s failed: %v", id, frame.KindName, peer, err)
		env.failures.Inc()
		env.publish(&ActorFailed{ID: id, Kind: frame.KindName, Err: err})
	}
}

// Undelivered implements netchannel.Handler
func (r *remoting) Undelivered(peer address.Node, frame *wire.Frame, err error) {
	env := r.env
	receiver := address.Remote(peer, address.ActorID(frame.Destination))
	switch frame.Kind {
	case wire.KindData, wire.KindBroadcast:
		var msg any = frame.TypeTag
		if decoded, derr := env.remoteConfig.Decode(frame.TypeTag, frame.Payload); derr == nil {
			msg = decoded
		}
		if frame.Kind == wire.KindBroadcast {
			receiver = address.NoSender()
		}
		env.deadLetter(localSender(frame), receiver, msg, err)
	case wire.KindSpawn:
		env.logger.Warnf("spawn of %s on %s was not delivered: %v", frame.Destination, peer, err)
		env.publish(&ActorFailed{ID: receiver.ID(), Kind: frame.KindName, Err: err})
	case wire.KindQuery:
		env.queryAnswered(peer, frame, false)
	default:
		env.logger.Warnf("%s frame to %s was not delivered: %v", frame.Kind, peer, err)
	}
}

// StateChanged implements netchannel.Handler
func (r *remoting) StateChanged(peer address.Node, from, to netchannel.State) {
	r.env.logger.Infof("connection to %s is %s (was %s)", peer, to, from)
	r.env.publish(&ConnectionStateChanged{Node: peer, From: from, To: to})
}

// SequenceGap implements netchannel.Handler
func (r *remoting) SequenceGap(peer address.Node, expected, got uint64) {
	r.env.logger.Warnf("frames %d to %d from %s are lost", expected, got-1, peer)
	r.env.publish(&SequenceGap{Node: peer, Expected: expected, Got: got})
}

// remoteSender rebuilds the sender of an inbound frame
func remoteSender(peer address.Node, frame *wire.Frame) address.ActorRef {
	if frame.SourceID == "" {
		return address.NoSender()
	}
	node := peer
	if frame.SourceNode != "" {
		if parsed, err := address.ParseNode(frame.SourceNode); err == nil {
			node = parsed
		}
	}
	return address.Remote(node, address.ActorID(frame.SourceID))
}

// localSender rebuilds the sender of an outbound frame
func localSender(frame *wire.Frame) address.ActorRef {
	if frame.SourceID == "" {
		return address.NoSender()
	}
	return address.Local(address.ActorID(frame.SourceID))
}
