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

// Package netchannel keeps one reliable, ordered connection per peer node.
// Sequenced frames are queued in a per peer outbox, numbered, written on the
// current connection and released once the peer acknowledges them. When a
// connection drops, the frames not yet acknowledged are written again on the
// next one and the receiver discards the duplicates.
package netchannel

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/compression"
	"github.com/tochemey/netactor/internal/tcp"
	"github.com/tochemey/netactor/internal/wire"
	"github.com/tochemey/netactor/internal/xsync"
	"github.com/tochemey/netactor/log"
	"github.com/tochemey/netactor/remote"
)

// Manager owns the listener and the connections to every peer
type Manager struct {
	config  *remote.Config
	handler Handler
	logger  log.Logger

	self     address.Node
	listener *tcp.Listener
	wrapper  compression.ConnWrapper
	peers    *xsync.ShardedMap[*peer]

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  *atomic.Bool
	stopping *atomic.Bool
}

// NewManager creates a Manager. It does nothing until Start.
func NewManager(config *remote.Config, handler Handler, opts ...Option) *Manager {
	m := &Manager{
		config:   config,
		handler:  handler,
		logger:   log.DiscardLogger,
		peers:    xsync.NewShardedMap[*peer](0),
		started:  atomic.NewBool(false),
		stopping: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt.Apply(m)
	}
	return m
}

// Start binds the listener and begins accepting peers
func (m *Manager) Start(ctx context.Context) error {
	if m.started.Load() {
		return nil
	}
	if err := m.config.Sanitize(); err != nil {
		return err
	}
	if err := m.config.Validate(); err != nil {
		return err
	}

	wrapper, err := m.config.Compression().ConnWrapper()
	if err != nil {
		return err
	}

	var serverTLS *tls.Config
	if info := m.config.TLS(); info.Enabled() {
		serverTLS = info.ServerConfig
	}

	bindAddr := net.JoinHostPort(m.config.BindAddr(), strconv.Itoa(m.config.BindPort()))
	listener, err := tcp.Listen(ctx, bindAddr, serverTLS, m.config.KeepAlive())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}

	m.wrapper = wrapper
	m.listener = listener
	m.self = address.NewNode(m.config.BindAddr(), listener.Addr().Port)
	m.logger = m.logger.With("node", m.self.String())
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.started.Store(true)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := listener.Serve(m.accept); err != nil {
			m.logger.Errorf("accept loop stopped: %v", err)
		}
	}()

	m.logger.Infof("listening on %s", m.self)
	return nil
}

// Node returns the address peers use to reach this Manager
func (m *Manager) Node() address.Node {
	return m.self
}

// Send queues a sequenced frame for node and returns once it is queued.
// It fails with ErrNodeUnreachable while node is in its unreachable cooldown
// and with ErrMailboxFull when the outbox is full under the fail-fast policy.
func (m *Manager) Send(ctx context.Context, node address.Node, frame *wire.Frame) error {
	if !m.started.Load() || m.stopping.Load() {
		return gerrors.ErrConnectionClosed
	}
	if !frame.Kind.Sequenced() {
		return fmt.Errorf("%s frames are not sent through the outbox", frame.Kind)
	}
	if node.Equals(m.self) {
		return fmt.Errorf("cannot send to self (%s)", node)
	}

	p := m.peerFor(node)
	p.mu.Lock()
	unreachable := p.coolingDown(time.Now())
	p.mu.Unlock()
	if unreachable {
		return gerrors.ErrNodeUnreachable
	}

	if err := p.outbox.enqueue(ctx, frame); err != nil {
		return err
	}
	return m.ensureConnected(p, frame)
}

// Connections returns the state of every known peer, sorted by node
func (m *Manager) Connections() []Connection {
	peers := m.peers.Snapshot()
	out := make([]Connection, 0, len(peers))
	for _, p := range peers {
		out = append(out, p.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Node.Less(out[j].Node)
	})
	return out
}

// Stop says goodbye to every connected peer, closes all connections and
// fails whatever is still queued with ErrConnectionClosed.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.started.Load() || !m.stopping.CompareAndSwap(false, true) {
		return nil
	}

	err := m.listener.Close()
	peers := m.peers.Snapshot()

	eg, _ := errgroup.WithContext(ctx)
	for _, p := range peers {
		if ch := p.current(); ch != nil {
			eg.Go(func() error {
				ch.goodbye(m.config.WriteTimeout())
				return nil
			})
		}
	}
	_ = eg.Wait()

	m.cancel()
	for _, p := range peers {
		if ch := p.current(); ch != nil {
			ch.close(gerrors.ErrConnectionClosed)
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}

	for _, p := range peers {
		m.undelivered(p, p.outbox.close(), gerrors.ErrConnectionClosed, nil)
	}
	m.logger.Infof("stopped")
	return err
}

func (m *Manager) peerFor(node address.Node) *peer {
	key := node.String()
	if p, ok := m.peers.Get(key); ok {
		return p
	}
	p := newPeer(node, m.config)
	if m.peers.SetIfAbsent(key, p) {
		return p
	}
	p, _ = m.peers.Get(key)
	return p
}

// transition must be called with p.mu held
func (m *Manager) transition(p *peer, to State) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	m.logger.Debugf("connection to %s: %s -> %s", p.node, from, to)
	m.handler.StateChanged(p.node, from, to)
}

func (m *Manager) undelivered(p *peer, frames []*wire.Frame, err error, except *wire.Frame) {
	for _, f := range frames {
		if f != except {
			m.handler.Undelivered(p.node, f, err)
		}
	}
}

// ensureConnected starts a connect cycle when p is closed
func (m *Manager) ensureConnected(p *peer, own *wire.Frame) error {
	p.mu.Lock()
	if p.state != StateClosed {
		p.mu.Unlock()
		return nil
	}

	if p.coolingDown(time.Now()) {
		failed := p.outbox.failAll()
		p.mu.Unlock()
		m.undelivered(p, failed, gerrors.ErrNodeUnreachable, own)
		return gerrors.ErrNodeUnreachable
	}

	m.transition(p, StateConnecting)
	m.startConnect(p)
	p.mu.Unlock()
	return nil
}

// startConnect must be called with p.mu held
func (m *Manager) startConnect(p *peer) {
	if p.connecting || m.stopping.Load() {
		return
	}
	p.connecting = true
	m.wg.Add(1)
	go m.connect(p)
}

// connect runs reconnect cycles until p is connected, the cycle is exhausted
// or the Manager stops
func (m *Manager) connect(p *peer) {
	defer m.wg.Done()
	for {
		retrier := retry.NewRetrier(m.config.ReconnectRetries(), m.config.ReconnectInitialBackoff(), m.config.ReconnectMaxBackoff())
		err := retrier.RunContext(m.ctx, func(ctx context.Context) error {
			if p.current() != nil {
				return nil
			}
			return m.dial(ctx, p)
		})

		p.mu.Lock()
		switch {
		case p.channel != nil:
			p.connecting = false
			p.mu.Unlock()
			return
		case m.ctx.Err() != nil:
			p.connecting = false
			m.transition(p, StateClosed)
			p.mu.Unlock()
			return
		case err == nil:
			// the connection that satisfied the cycle is already gone
			p.mu.Unlock()
			continue
		}

		p.connecting = false
		p.cooldownUntil = time.Now().Add(m.config.UnreachableCooldown())
		m.transition(p, StateClosed)
		failed := p.outbox.failAll()
		p.mu.Unlock()

		m.logger.Warnf("%s is unreachable: %v", p.node, err)
		m.undelivered(p, failed, gerrors.ErrNodeUnreachable, nil)
		return
	}
}

func (m *Manager) dial(ctx context.Context, p *peer) error {
	var clientTLS *tls.Config
	if info := m.config.TLS(); info.Enabled() {
		clientTLS = info.ClientConfig
	}

	conn, err := tcp.Dial(ctx, p.node.String(), m.config.DialTimeout(), clientTLS, m.config.KeepAlive())
	if err != nil {
		m.logger.Debugf("failed to dial %s: %v", p.node, err)
		return err
	}

	reply, session, err := m.dialHandshake(conn, p)
	if err != nil {
		_ = conn.Close()
		m.logger.Debugf("handshake with %s failed: %v", p.node, err)
		return err
	}

	return m.attach(p, conn, m.self, reply, session)
}

func (m *Manager) accept(conn net.Conn) {
	if m.stopping.Load() {
		_ = conn.Close()
		return
	}

	p, remote, session, err := m.acceptHandshake(conn)
	if err != nil {
		_ = conn.Close()
		m.logger.Debugf("inbound handshake from %s failed: %v", conn.RemoteAddr(), err)
		return
	}

	if err := m.attach(p, conn, p.node, remote, session); err != nil {
		m.logger.Debugf("inbound connection from %s dropped: %v", p.node, err)
	}
}

// attach makes a handshaken connection the current channel of p. When p
// already has one, the connection dialed by the higher node wins; between
// two connections dialed by the same node the newer one wins.
func (m *Manager) attach(p *peer, raw net.Conn, dialedBy address.Node, remote *wire.Frame, session string) error {
	conn := raw
	if m.wrapper != nil {
		wrapped, err := m.wrapper.Wrap(raw)
		if err != nil {
			_ = raw.Close()
			return err
		}
		conn = wrapped
	}
	ch := newChannel(m, p, conn, dialedBy, session)

	p.mu.Lock()
	if m.stopping.Load() {
		p.mu.Unlock()
		_ = conn.Close()
		return gerrors.ErrConnectionClosed
	}

	if current, _ := p.outbox.position(); current != session {
		// the outbox was failed while handshaking: the peer expects a stale session
		p.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("%w: outbox session changed", gerrors.ErrHandshakeFailed)
	}

	replaced := p.channel
	if replaced != nil && !m.supersedes(p, ch, replaced) {
		p.mu.Unlock()
		ch.close(gerrors.ErrConnectionSuperseded)
		return nil
	}

	if p.inbound.begin(remote.Session) {
		m.logger.Debugf("new inbound session %s from %s", remote.Session, p.node)
	}
	p.outbox.ack(remote.AckSession, remote.Ack)
	ch.epoch = p.outbox.rewind()
	p.channel = ch
	p.cooldownUntil = time.Time{}
	if p.state == StateClosed {
		m.transition(p, StateConnecting)
	}
	m.transition(p, StateEstablished)
	m.wg.Add(1)
	p.mu.Unlock()

	if replaced != nil {
		replaced.close(gerrors.ErrConnectionSuperseded)
	}

	go func() {
		defer m.wg.Done()
		ch.run()
	}()

	m.logger.Debugf("connected to %s (dialed by %s)", p.node, dialedBy)
	return nil
}

// supersedes reports whether candidate should replace current
func (m *Manager) supersedes(p *peer, candidate, current *channel) bool {
	if candidate.dialedBy.Equals(current.dialedBy) {
		return true
	}
	winner := m.self
	if m.self.Less(p.node) {
		winner = p.node
	}
	return candidate.dialedBy.Equals(winner)
}

// channelDown is called once per attached channel after its goroutines
// returned
func (m *Manager) channelDown(ch *channel) {
	p := ch.peer
	p.mu.Lock()
	if p.channel != ch {
		p.mu.Unlock()
		return
	}

	p.channel = nil
	p.outbox.rewind()

	var failed []*wire.Frame
	switch {
	case m.stopping.Load():
		m.transition(p, StateClosed)
	case errors.Is(ch.err, gerrors.ErrHeartbeatTimeout):
		p.cooldownUntil = time.Now().Add(m.config.UnreachableCooldown())
		m.transition(p, StateClosed)
		failed = p.outbox.failAll()
	default:
		m.transition(p, StateClosed)
		if p.outbox.outstanding() > 0 {
			m.transition(p, StateConnecting)
			m.startConnect(p)
		}
	}
	p.mu.Unlock()

	switch {
	case errors.Is(ch.err, errGoodbye), errors.Is(ch.err, errIdle), errors.Is(ch.err, gerrors.ErrConnectionClosed):
		m.logger.Debugf("connection to %s closed: %v", p.node, ch.err)
	default:
		m.logger.Warnf("connection to %s lost: %v", p.node, ch.err)
	}
	m.undelivered(p, failed, gerrors.ErrNodeUnreachable, nil)
}

// degraded is called on the first missed heartbeat
func (m *Manager) degraded(ch *channel) {
	p := ch.peer
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == ch && p.state == StateEstablished {
		m.transition(p, StateDegraded)
	}
}

// recovered is called when a heartbeat reply arrives after a miss
func (m *Manager) recovered(ch *channel) {
	p := ch.peer
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == ch && p.state == StateDegraded {
		m.transition(p, StateEstablished)
	}
}
