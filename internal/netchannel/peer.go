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
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/remote"
)

type peerStats struct {
	sent          *atomic.Uint64
	received      *atomic.Uint64
	retransmitted *atomic.Uint64
	duplicates    *atomic.Uint64
	gaps          *atomic.Uint64
}

func newPeerStats() *peerStats {
	return &peerStats{
		sent:          atomic.NewUint64(0),
		received:      atomic.NewUint64(0),
		retransmitted: atomic.NewUint64(0),
		duplicates:    atomic.NewUint64(0),
		gaps:          atomic.NewUint64(0),
	}
}

// peer holds everything known about one remote node. It lives as long as
// the Manager; channels come and go underneath it.
type peer struct {
	node address.Node

	mu            sync.Mutex
	state         State
	channel       *channel
	connecting    bool
	cooldownUntil time.Time

	outbox  *outbox
	inbound *inbound
	stats   *peerStats
}

func newPeer(node address.Node, cfg *remote.Config) *peer {
	return &peer{
		node:    node,
		state:   StateClosed,
		outbox:  newOutbox(cfg.OutboxCapacity(), cfg.OutboxPolicy(), int(cfg.MaxFrameSize())),
		inbound: newInbound(),
		stats:   newPeerStats(),
	}
}

// current returns the attached channel, if any
func (p *peer) current() *channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel
}

// coolingDown must be called with the lock held
func (p *peer) coolingDown(now time.Time) bool {
	return p.state == StateClosed && now.Before(p.cooldownUntil)
}

// Connection describes the link to one peer
type Connection struct {
	Node                address.Node
	State               State
	Outstanding         int
	FramesSent          uint64
	FramesReceived      uint64
	FramesRetransmitted uint64
	DuplicatesDiscarded uint64
	SequenceGaps        uint64
}

func (p *peer) snapshot() Connection {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()
	return Connection{
		Node:                p.node,
		State:               state,
		Outstanding:         p.outbox.outstanding(),
		FramesSent:          p.stats.sent.Load(),
		FramesReceived:      p.stats.received.Load(),
		FramesRetransmitted: p.stats.retransmitted.Load(),
		DuplicatesDiscarded: p.stats.duplicates.Load(),
		SequenceGaps:        p.stats.gaps.Load(),
	}
}
