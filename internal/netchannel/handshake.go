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
	"fmt"
	"net"
	"time"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/wire"
)

// handshake builds the local handshake for p. peerSession is the session the
// peer announced, empty when the peer has not spoken yet.
func (m *Manager) handshake(p *peer, peerSession string) *wire.Frame {
	session, _ := p.outbox.position()
	f := &wire.Frame{
		Kind:        wire.KindHandshake,
		Node:        m.self.String(),
		Session:     session,
		Compression: m.config.Compression().String(),
	}
	if peerSession == "" {
		f.AckSession, f.Ack = p.inbound.position()
	} else {
		f.AckSession = peerSession
		f.Ack = p.inbound.handshakeAck(peerSession)
	}
	return f
}

// checkHandshake validates a received handshake and returns the peer node
func (m *Manager) checkHandshake(f *wire.Frame) (address.Node, error) {
	if f.Kind != wire.KindHandshake {
		return address.Node{}, fmt.Errorf("%w: expected a handshake, got %s", gerrors.ErrHandshakeFailed, f.Kind)
	}
	if f.Error != "" {
		return address.Node{}, fmt.Errorf("%w: %s", gerrors.ErrHandshakeFailed, f.Error)
	}

	node, err := address.ParseNode(f.Node)
	if err != nil {
		return address.Node{}, fmt.Errorf("%w: %w", gerrors.ErrHandshakeFailed, err)
	}

	switch {
	case f.Session == "":
		return address.Node{}, fmt.Errorf("%w: missing session", gerrors.ErrHandshakeFailed)
	case node.Equals(m.self):
		return address.Node{}, fmt.Errorf("%w: connected to self", gerrors.ErrHandshakeFailed)
	case f.Compression != m.config.Compression().String():
		return address.Node{}, fmt.Errorf("%w: compression mismatch (local=%s, remote=%s)",
			gerrors.ErrHandshakeFailed, m.config.Compression(), f.Compression)
	}
	return node, nil
}

// dialHandshake runs the dialer side: write first, then read
func (m *Manager) dialHandshake(conn net.Conn, p *peer) (*wire.Frame, string, error) {
	maxFrame := int(m.config.MaxFrameSize())
	_ = conn.SetDeadline(time.Now().Add(m.config.HandshakeTimeout()))

	local := m.handshake(p, "")
	if err := wire.WriteFrame(conn, local, maxFrame); err != nil {
		return nil, "", err
	}

	reply, err := wire.ReadFrame(conn, maxFrame)
	if err != nil {
		return nil, "", err
	}

	node, err := m.checkHandshake(reply)
	if err != nil {
		return nil, "", err
	}
	if !node.Equals(p.node) {
		return nil, "", fmt.Errorf("%w: dialed %s but %s answered", gerrors.ErrHandshakeFailed, p.node, node)
	}

	_ = conn.SetDeadline(time.Time{})
	return reply, local.Session, nil
}

// acceptHandshake runs the acceptor side: read first, then write
func (m *Manager) acceptHandshake(conn net.Conn) (*peer, *wire.Frame, string, error) {
	maxFrame := int(m.config.MaxFrameSize())
	_ = conn.SetDeadline(time.Now().Add(m.config.HandshakeTimeout()))

	remote, err := wire.ReadFrame(conn, maxFrame)
	if err != nil {
		return nil, nil, "", err
	}

	node, err := m.checkHandshake(remote)
	if err != nil {
		_ = wire.WriteFrame(conn, &wire.Frame{
			Kind:  wire.KindHandshake,
			Node:  m.self.String(),
			Error: err.Error(),
		}, maxFrame)
		return nil, nil, "", err
	}

	p := m.peerFor(node)
	local := m.handshake(p, remote.Session)
	if err := wire.WriteFrame(conn, local, maxFrame); err != nil {
		return nil, nil, "", err
	}

	_ = conn.SetDeadline(time.Time{})
	return p, remote, local.Session, nil
}
