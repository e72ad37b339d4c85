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

package testkit

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/tochemey/netactor/actor"
	"github.com/tochemey/netactor/address"
)

const (
	// MessagesQueueMax is the number of messages a probe buffers
	MessagesQueueMax int = 1000
	// DefaultTimeout is the wait of the Expect calls without an explicit duration
	DefaultTimeout = 3 * time.Second
)

// Probe is an actor that records what it receives so tests can assert on it
type Probe interface {
	// ExpectMessage asserts that the next message equals message
	ExpectMessage(message any)
	// ExpectMessageWithin asserts that the next message arrives within duration and equals message
	ExpectMessageWithin(duration time.Duration, message any)
	// ExpectNoMessage asserts that nothing arrives for a short while
	ExpectNoMessage()
	// ExpectAnyMessage returns the next message
	ExpectAnyMessage() any
	// ExpectAnyMessageWithin returns the next message received within duration
	ExpectAnyMessageWithin(duration time.Duration) any
	// ExpectMessageOfType asserts the type of the next message
	ExpectMessageOfType(messageType reflect.Type)
	// ExpectMessageOfTypeWithin asserts the type of the next message received within duration
	ExpectMessageOfTypeWithin(duration time.Duration, messageType reflect.Type)
	// Send sends message to the actor at to with the probe as sender
	Send(to address.ActorRef, message any)
	// Sender returns the sender of the last received message
	Sender() address.ActorRef
	// Ref returns the probe reference
	Ref() address.ActorRef
	// Stop stops the probe
	Stop()
}

type message struct {
	sender  address.ActorRef
	payload any
}

// sendRequest is handled on the probe's own turn so the target sees the
// probe as sender
type sendRequest struct {
	to      address.ActorRef
	payload any
	result  chan error
}

type probeActor struct {
	messages chan message
}

var _ actor.Behavior = (*probeActor)(nil)

func (x *probeActor) OnStart(*actor.Context) error {
	return nil
}

func (x *probeActor) OnMessage(ctx *actor.ReceiveContext) error {
	if req, ok := ctx.Message().(*sendRequest); ok {
		req.result <- ctx.Send(req.to, req.payload)
		return nil
	}
	x.messages <- message{sender: ctx.Sender(), payload: ctx.Message()}
	return nil
}

func (x *probeActor) OnStop(*actor.Context) error {
	return nil
}

type probe struct {
	pt *testing.T

	ctx        context.Context
	env        *actor.Environment
	ref        address.ActorRef
	messages   chan message
	lastSender address.ActorRef
}

var _ Probe = (*probe)(nil)

func newProbe(ctx context.Context, env *actor.Environment, t *testing.T) (*probe, error) {
	messages := make(chan message, MessagesQueueMax)
	ref, err := env.Spawn(ctx, &probeActor{messages: messages})
	if err != nil {
		return nil, err
	}
	return &probe{
		pt:         t,
		ctx:        ctx,
		env:        env,
		ref:        ref,
		messages:   messages,
		lastSender: address.NoSender(),
	}, nil
}

func (x *probe) ExpectMessage(message any) {
	x.expectMessage(DefaultTimeout, message)
}

func (x *probe) ExpectMessageWithin(duration time.Duration, message any) {
	x.expectMessage(duration, message)
}

func (x *probe) ExpectNoMessage() {
	x.pt.Helper()
	select {
	case received := <-x.messages:
		x.pt.Errorf("received unexpected message %v", received.payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func (x *probe) ExpectAnyMessage() any {
	return x.receiveOne(DefaultTimeout)
}

func (x *probe) ExpectAnyMessageWithin(duration time.Duration) any {
	return x.receiveOne(duration)
}

func (x *probe) ExpectMessageOfType(messageType reflect.Type) {
	x.expectMessageOfType(DefaultTimeout, messageType)
}

func (x *probe) ExpectMessageOfTypeWithin(duration time.Duration, messageType reflect.Type) {
	x.expectMessageOfType(duration, messageType)
}

func (x *probe) Send(to address.ActorRef, payload any) {
	x.pt.Helper()
	req := &sendRequest{to: to, payload: payload, result: make(chan error, 1)}
	require.NoError(x.pt, x.env.Send(x.ctx, x.ref, req))

	select {
	case err := <-req.result:
		require.NoError(x.pt, err)
	case <-time.After(DefaultTimeout):
		x.pt.Fatalf("timeout (%v) sending %T to %s", DefaultTimeout, payload, to)
	}
}

func (x *probe) Sender() address.ActorRef {
	return x.lastSender
}

func (x *probe) Ref() address.ActorRef {
	return x.ref
}

func (x *probe) Stop() {
	x.pt.Helper()
	require.NoError(x.pt, x.env.Stop(x.ctx, x.ref))
}

func (x *probe) expectMessage(duration time.Duration, expected any) {
	x.pt.Helper()
	received := x.receiveOne(duration)
	if received == nil {
		return
	}

	want, wantProto := expected.(proto.Message)
	got, gotProto := received.(proto.Message)
	if wantProto && gotProto {
		require.True(x.pt, proto.Equal(want, got), fmt.Sprintf("expected %v, got %v", want, got))
		return
	}
	require.Equal(x.pt, expected, received)
}

func (x *probe) expectMessageOfType(duration time.Duration, messageType reflect.Type) {
	x.pt.Helper()
	received := x.receiveOne(duration)
	if received == nil {
		return
	}
	require.Equal(x.pt, messageType, reflect.TypeOf(received))
}

func (x *probe) receiveOne(duration time.Duration) any {
	x.pt.Helper()
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case received := <-x.messages:
		x.lastSender = received.sender
		return received.payload
	case <-timer.C:
		x.pt.Errorf("timeout (%v) waiting for a message", duration)
		return nil
	}
}
