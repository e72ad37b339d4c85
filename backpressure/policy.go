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

// Package backpressure defines what a bounded queue does when it is full.
// The same policy type drives actor mailboxes and per-peer outbound queues
// so that a local and a remote send fail the same way.
package backpressure

import (
	"fmt"
	"time"
)

// Mode selects the overflow behavior
type Mode int

const (
	// FailFast rejects the send immediately when the queue is full
	FailFast Mode = iota
	// BlockWithTimeout waits for room up to the policy timeout
	BlockWithTimeout
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case BlockWithTimeout:
		return "block-with-timeout"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Policy is an overflow mode plus the wait bound used by BlockWithTimeout
type Policy struct {
	mode    Mode
	timeout time.Duration
}

// NewFailFast returns a policy that never waits
func NewFailFast() Policy {
	return Policy{mode: FailFast}
}

// NewBlockWithTimeout returns a policy that waits up to timeout.
// A non-positive timeout behaves like FailFast.
func NewBlockWithTimeout(timeout time.Duration) Policy {
	if timeout <= 0 {
		return NewFailFast()
	}
	return Policy{mode: BlockWithTimeout, timeout: timeout}
}

// Mode returns the overflow mode
func (p Policy) Mode() Mode {
	return p.mode
}

// Timeout returns how long a blocked send may wait. It is zero for FailFast.
func (p Policy) Timeout() time.Duration {
	return p.timeout
}

// Blocking reports whether a full queue makes the sender wait
func (p Policy) Blocking() bool {
	return p.mode == BlockWithTimeout && p.timeout > 0
}

// String returns a readable form of the policy
func (p Policy) String() string {
	if p.Blocking() {
		return fmt.Sprintf("%s(%s)", p.mode, p.timeout)
	}
	return p.mode.String()
}
