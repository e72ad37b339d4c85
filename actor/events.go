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
	"github.com/tochemey/netactor/internal/netchannel"
)

// eventsTopic is the topic every Environment event is published on
const eventsTopic = "netactor.events"

// ConnectionState is the state of the connection to a peer
type ConnectionState = netchannel.State

// connection states
const (
	ConnectionClosed      = netchannel.StateClosed
	ConnectionConnecting  = netchannel.StateConnecting
	ConnectionEstablished = netchannel.StateEstablished
	ConnectionDegraded    = netchannel.StateDegraded
)

// ActorStarted is published once OnStart succeeded
type ActorStarted struct {
	ID   address.ActorID
	Kind string
}

// ActorStopped is published once an actor is removed from the registry
type ActorStopped struct {
	ID   address.ActorID
	Kind string
}

// ActorFailed is published when an actor is isolated after a failure, or
// when a remote spawn request cannot be honored
type ActorFailed struct {
	ID   address.ActorID
	Kind string
	Err  error
}

// DeadLetter is published for every message that could not be delivered
type DeadLetter struct {
	Sender   address.ActorRef
	Receiver address.ActorRef
	// Message is the undelivered message, or its type tag when it could not
	// be decoded
	Message any
	Reason  error
}

// ConnectionStateChanged is published on every connection transition
type ConnectionStateChanged struct {
	Node address.Node
	From ConnectionState
	To   ConnectionState
}

// SequenceGap is published when frames from a peer were lost for good
type SequenceGap struct {
	Node     address.Node
	Expected uint64
	Got      uint64
}

// Expired is published when the Environment expires
type Expired struct {
	// Remote is set when a peer triggered the expiration
	Remote bool
}
