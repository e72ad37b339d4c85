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

// Behavior is the code an actor runs. The three hooks of one actor are never
// invoked concurrently, so a Behavior may keep mutable state in its fields
// without further synchronization.
type Behavior interface {
	// OnStart runs once, on the actor's first turn, before any message.
	// Returning an error fails the actor; OnStop is then skipped.
	OnStart(ctx *Context) error
	// OnMessage handles one message. Returning an error or panicking fails
	// the actor: it is stopped and the failure is reported, nothing else is
	// affected.
	OnMessage(ctx *ReceiveContext) error
	// OnStop runs once when the actor stops, after the message in flight.
	OnStop(ctx *Context) error
}

// Summarizer is implemented by behaviors that expose a state summary to
// Environment.ListActive. Summary is called on the actor's own turn, after
// the last message it processed, and the result is cached.
type Summarizer interface {
	Summary() any
}

// ReceiveFunc handles a message
type ReceiveFunc func(ctx *ReceiveContext) error

// FuncBehavior is a Behavior built from a ReceiveFunc, with no-op start
// and stop hooks.
type FuncBehavior struct {
	receive ReceiveFunc
}

var _ Behavior = (*FuncBehavior)(nil)

// NewFuncBehavior returns a Behavior that calls receive for every message
func NewFuncBehavior(receive ReceiveFunc) *FuncBehavior {
	return &FuncBehavior{receive: receive}
}

// OnStart implements Behavior
func (x *FuncBehavior) OnStart(*Context) error {
	return nil
}

// OnMessage implements Behavior
func (x *FuncBehavior) OnMessage(ctx *ReceiveContext) error {
	return x.receive(ctx)
}

// OnStop implements Behavior
func (x *FuncBehavior) OnStop(*Context) error {
	return nil
}
