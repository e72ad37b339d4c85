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

package netchannel

import (
	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/internal/wire"
)

// Handler receives what the Manager cannot resolve by itself. Calls for one
// peer are serialized, and a Handler must not call back into the Manager from
// StateChanged or SequenceGap.
type Handler interface {
	// Deliver hands over a sequenced frame in stream order. Returning an error
	// that wraps ErrSerialization tears the connection down after the frame is
	// counted as delivered; other errors are only logged.
	Deliver(peer address.Node, frame *wire.Frame) error
	// Undelivered reports a queued frame that will never be written
	Undelivered(peer address.Node, frame *wire.Frame, err error)
	// StateChanged reports a connection state transition
	StateChanged(peer address.Node, from, to State)
	// SequenceGap reports frames that were lost for good
	SequenceGap(peer address.Node, expected, got uint64)
}
