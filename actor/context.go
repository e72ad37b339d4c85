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
	"github.com/tochemey/netactor/log"
)

// Context is handed to OnStart and OnStop
type Context struct {
	ctx  context.Context
	cell *cell
}

func newContext(ctx context.Context, c *cell) *Context {
	return &Context{ctx: ctx, cell: c}
}

// Context returns the context of the running Environment. It is canceled
// when the Environment shuts down.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Self returns the reference of the running actor
func (c *Context) Self() address.ActorRef {
	return address.Local(c.cell.id)
}

// Environment returns the Environment hosting the actor
func (c *Context) Environment() *Environment {
	return c.cell.env
}

// Logger returns a logger scoped to the actor
func (c *Context) Logger() log.Logger {
	return c.cell.logger
}

// Send sends msg to the actor at to with the running actor as sender
func (c *Context) Send(to address.ActorRef, msg any) error {
	return c.cell.env.send(c.ctx, c.Self(), to, msg)
}

// Find looks the actor named id up here and on every known peer
func (c *Context) Find(id address.ActorID) (address.ActorRef, error) {
	return c.cell.env.Find(c.ctx, id)
}

// Spawn starts a new local actor
func (c *Context) Spawn(behavior Behavior, opts ...SpawnOption) (address.ActorRef, error) {
	return c.cell.env.Spawn(c.ctx, behavior, opts...)
}

// Stop asks the actor at ref to stop
func (c *Context) Stop(ref address.ActorRef) error {
	return c.cell.env.Stop(c.ctx, ref)
}

// StopSelf asks the running actor to stop once the current turn ends
func (c *Context) StopSelf() {
	c.cell.requestStop()
}

// ReceiveContext is handed to OnMessage. It is only valid during that call.
type ReceiveContext struct {
	actorContext
	envelope *Envelope
}

// actorContext is embedded under its own name so that the Context method
// stays reachable on ReceiveContext
type actorContext = Context

func newReceiveContext(ctx context.Context, c *cell, envelope *Envelope) *ReceiveContext {
	return &ReceiveContext{
		actorContext: actorContext{ctx: ctx, cell: c},
		envelope:     envelope,
	}
}

// Sender returns the sender of the message, NoSender when there is none
func (rctx *ReceiveContext) Sender() address.ActorRef {
	return rctx.envelope.Sender
}

// Message returns the message being handled
func (rctx *ReceiveContext) Message() any {
	return rctx.envelope.Message
}

// Envelope returns the envelope being handled
func (rctx *ReceiveContext) Envelope() *Envelope {
	return rctx.envelope
}

// Reply sends msg back to the sender of the message being handled
func (rctx *ReceiveContext) Reply(msg any) error {
	sender := rctx.Sender()
	if sender.IsZero() {
		return gerrors.ErrNoSender
	}
	return rctx.Send(sender, msg)
}
