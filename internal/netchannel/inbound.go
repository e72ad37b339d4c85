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

import "sync"

type acceptResult int

const (
	acceptInOrder acceptResult = iota
	acceptDuplicate
	acceptGap
)

// inbound tracks the sequence numbers delivered from one peer. It outlives
// connections so that retransmitted frames are recognized after a reconnect.
// The session identifies the peer's outbound stream; a new session restarts
// the count.
type inbound struct {
	mu      sync.Mutex
	session string
	last    uint64
	acked   uint64
}

func newInbound() *inbound {
	return &inbound{}
}

// begin switches to session. It reports whether the session is new.
func (in *inbound) begin(session string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.session == session {
		return false
	}
	in.session = session
	in.last = 0
	in.acked = 0
	return true
}

// position returns the current session and last delivered sequence
func (in *inbound) position() (string, uint64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.session, in.last
}

// handshakeAck returns what to acknowledge to a peer announcing session
func (in *inbound) handshakeAck(session string) uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.session != session {
		return 0
	}
	return in.last
}

// classify must be called with the lock held
func (in *inbound) classify(seq uint64) acceptResult {
	switch {
	case seq <= in.last:
		return acceptDuplicate
	case seq > in.last+1:
		return acceptGap
	default:
		return acceptInOrder
	}
}

// toAck returns the sequence to acknowledge when it moved since the last
// acknowledgement.
func (in *inbound) toAck() (string, uint64, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.last <= in.acked {
		return "", 0, false
	}
	in.acked = in.last
	return in.session, in.last, true
}
