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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMailboxFull is returned when a bounded queue, either an actor mailbox or
	// the outbound queue of a remote connection, cannot accept a message within
	// the configured backpressure policy.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrActorNotFound is returned when an ActorRef addresses an actor that is
	// stopped, stopping or that never existed on the addressed node.
	ErrActorNotFound = errors.New("actor not found")

	// ErrNodeUnreachable is returned when the connection to a peer node is closed
	// and its reconnection budget has been exhausted.
	ErrNodeUnreachable = errors.New("node is unreachable")

	// ErrSerialization is returned when a payload cannot be encoded or decoded.
	// On the receive path it is fatal to the connection that carried the frame.
	ErrSerialization = errors.New("serialization failure")

	// ErrHeartbeatTimeout is returned when a peer did not answer heartbeats
	// within the missed-heartbeat budget.
	ErrHeartbeatTimeout = errors.New("heartbeat timeout")

	// ErrActorAlreadyExists is returned when spawning with an id already in use.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrInvalidActorRef is returned when an ActorRef is empty or malformed.
	ErrInvalidActorRef = errors.New("invalid actor reference")

	// ErrInvalidActorID is returned when a user supplied actor id is not valid.
	ErrInvalidActorID = errors.New("invalid actor id")

	// ErrKindNotRegistered is returned when spawning a kind the environment does not know.
	ErrKindNotRegistered = errors.New("actor kind is not registered")

	// ErrEnvironmentNotStarted is returned when the environment is used before Start.
	ErrEnvironmentNotStarted = errors.New("environment has not started")

	// ErrEnvironmentStopped is returned when the environment is used after Shutdown.
	ErrEnvironmentStopped = errors.New("environment is stopped")

	// ErrRemotingDisabled is returned when a remote operation is attempted on an
	// environment created without remoting.
	ErrRemotingDisabled = errors.New("remoting is not enabled")

	// ErrNoSender is returned when replying to a message that carried no sender.
	ErrNoSender = errors.New("message has no sender")

	// ErrSchedulerNotStarted is returned when scheduling before the environment starts.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrScheduleNotFound is returned when cancelling an unknown schedule.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrHandshakeFailed is returned when a connection handshake is rejected or malformed.
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrConnectionSuperseded is returned when a connection lost the
	// simultaneous-connect tie-break against another connection to the same peer.
	ErrConnectionSuperseded = errors.New("connection superseded")

	// ErrConnectionClosed is returned when writing to a closed connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrFrameTooLarge is returned when a frame exceeds the configured maximum size.
	ErrFrameTooLarge = errors.New("frame too large")
)

// PanicError wraps a value recovered from a panic inside an actor.
type PanicError struct {
	err error
}

var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// ActorFailure reports the isolated failure of a single actor.
type ActorFailure struct {
	actorID string
	err     error
}

var _ error = (*ActorFailure)(nil)

// NewActorFailure creates an ActorFailure for the given actor
func NewActorFailure(actorID string, err error) *ActorFailure {
	return &ActorFailure{actorID: actorID, err: err}
}

// ActorID returns the id of the failed actor
func (e *ActorFailure) ActorID() string {
	return e.actorID
}

// Error implements the standard error interface
func (e *ActorFailure) Error() string {
	return fmt.Sprintf("actor %s failed: %v", e.actorID, e.err)
}

func (e *ActorFailure) Unwrap() error {
	return e.err
}
