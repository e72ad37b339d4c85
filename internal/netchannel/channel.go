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
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/ticker"
	"github.com/tochemey/netactor/internal/wire"
)

const bufferSize = 64 * 1024

var (
	errGoodbye = errors.New("peer said goodbye")
	errIdle    = errors.New("connection idle")
)

// channel is one established TCP connection to a peer. It runs a reader,
// a writer and a heartbeat goroutine; the first one to fail closes the
// channel and the Manager is told once all three returned.
type channel struct {
	manager  *Manager
	peer     *peer
	conn     net.Conn
	dialedBy address.Node
	// session is the outbox session announced during the handshake
	session string
	epoch   uint64

	reader *bufio.Reader
	writer *bufio.Writer

	controlMu     sync.Mutex
	control       []*wire.Frame
	controlSignal chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	err       error

	goodbyeSent chan struct{}
	goodbyeOnce sync.Once

	lastActive  *atomic.Int64
	awaiting    *atomic.Bool
	missed      *atomic.Int32
	correlation *atomic.Uint64
}

func newChannel(m *Manager, p *peer, conn net.Conn, dialedBy address.Node, session string) *channel {
	return &channel{
		manager:       m,
		peer:          p,
		conn:          conn,
		dialedBy:      dialedBy,
		session:       session,
		reader:        bufio.NewReaderSize(conn, bufferSize),
		writer:        bufio.NewWriterSize(conn, bufferSize),
		controlSignal: make(chan struct{}, 1),
		done:          make(chan struct{}),
		goodbyeSent:   make(chan struct{}),
		lastActive:    atomic.NewInt64(time.Now().UnixNano()),
		awaiting:      atomic.NewBool(false),
		missed:        atomic.NewInt32(0),
		correlation:   atomic.NewUint64(0),
	}
}

// run blocks until the channel is closed and its goroutines returned
func (ch *channel) run() {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		ch.readLoop()
	}()
	go func() {
		defer wg.Done()
		ch.writeLoop()
	}()
	go func() {
		defer wg.Done()
		ch.heartbeatLoop()
	}()
	wg.Wait()
	ch.manager.channelDown(ch)
}

func (ch *channel) close(err error) {
	ch.closeOnce.Do(func() {
		ch.err = err
		close(ch.done)
		_ = ch.conn.Close()
	})
}

func (ch *channel) closed() bool {
	select {
	case <-ch.done:
		return true
	default:
		return false
	}
}

func (ch *channel) pushControl(f *wire.Frame) {
	ch.controlMu.Lock()
	ch.control = append(ch.control, f)
	ch.controlMu.Unlock()
	select {
	case ch.controlSignal <- struct{}{}:
	default:
	}
}

func (ch *channel) drainControl() []*wire.Frame {
	ch.controlMu.Lock()
	defer ch.controlMu.Unlock()
	out := ch.control
	ch.control = nil
	return out
}

// goodbye queues a Goodbye frame and waits until it is flushed
func (ch *channel) goodbye(timeout time.Duration) {
	ch.pushControl(&wire.Frame{Kind: wire.KindGoodbye})
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch.goodbyeSent:
	case <-ch.done:
	case <-timer.C:
	}
}

func (ch *channel) writeLoop() {
	outboxSignal := ch.peer.outbox.signal
	// the signal may have been consumed here while a newer channel waits on it
	defer ch.peer.outbox.kick()
	for {
		if err := ch.flush(); err != nil {
			ch.close(err)
			return
		}

		select {
		case <-ch.done:
			return
		case <-ch.controlSignal:
		case <-outboxSignal:
		}
	}
}

// flush writes queued control frames first, then pending sequenced frames,
// until both are empty.
func (ch *channel) flush() error {
	maxFrame := int(ch.manager.config.MaxFrameSize())
	wrote := false
	goodbye := false
	for {
		progressed := false
		for _, f := range ch.drainControl() {
			data, err := wire.Marshal(f, maxFrame)
			if err != nil {
				return err
			}
			if !wrote {
				ch.setWriteDeadline()
			}
			if _, err := ch.writer.Write(data); err != nil {
				return err
			}
			if f.Kind == wire.KindGoodbye {
				goodbye = true
			}
			progressed, wrote = true, true
		}

		entries, retransmits := ch.peer.outbox.take(ch.epoch)
		for _, e := range entries {
			if !wrote {
				ch.setWriteDeadline()
			}
			if _, err := ch.writer.Write(e.data); err != nil {
				return err
			}
			progressed, wrote = true, true
		}
		if len(entries) > 0 {
			ch.peer.stats.sent.Add(uint64(len(entries)))
			ch.peer.stats.retransmitted.Add(uint64(retransmits))
			ch.lastActive.Store(time.Now().UnixNano())
		}

		if !progressed {
			break
		}
	}

	if !wrote {
		return nil
	}
	if err := ch.writer.Flush(); err != nil {
		return err
	}
	if goodbye {
		ch.goodbyeOnce.Do(func() { close(ch.goodbyeSent) })
	}
	return nil
}

func (ch *channel) setWriteDeadline() {
	_ = ch.conn.SetWriteDeadline(time.Now().Add(ch.manager.config.WriteTimeout()))
}

func (ch *channel) readLoop() {
	maxFrame := int(ch.manager.config.MaxFrameSize())
	ackEvery := ch.manager.config.AckEvery()
	unacked := 0
	for {
		f, err := wire.ReadFrame(ch.reader, maxFrame)
		if err != nil {
			ch.close(err)
			return
		}

		ch.peer.stats.received.Inc()
		switch f.Kind {
		case wire.KindHeartbeatRequest:
			ch.peer.outbox.ack(f.AckSession, f.Ack)
			session, last := ch.peer.inbound.position()
			ch.pushControl(&wire.Frame{
				Kind:        wire.KindHeartbeatReply,
				Correlation: f.Correlation,
				AckSession:  session,
				Ack:         last,
			})
		case wire.KindHeartbeatReply:
			ch.peer.outbox.ack(f.AckSession, f.Ack)
			ch.heartbeatAnswered()
		case wire.KindAck:
			ch.peer.outbox.ack(f.AckSession, f.Ack)
		case wire.KindGoodbye:
			ch.close(errGoodbye)
			return
		case wire.KindHandshake:
			ch.close(fmt.Errorf("%w: unexpected handshake on an established connection", gerrors.ErrHandshakeFailed))
			return
		default:
			ch.lastActive.Store(time.Now().UnixNano())
			delivered, err := ch.deliver(f)
			if delivered {
				unacked++
			}
			if err != nil {
				if errors.Is(err, gerrors.ErrSerialization) {
					ch.sendAck()
					ch.close(err)
					return
				}
				ch.manager.logger.Warnf("frame %d from %s not delivered: %v", f.Sequence, ch.peer.node, err)
			}
		}

		if unacked >= ackEvery || (unacked > 0 && ch.reader.Buffered() == 0) {
			ch.sendAck()
			unacked = 0
		}
	}
}

// deliver hands f to the Handler unless it is a duplicate. Delivery happens
// under the inbound lock so that two channels of the same peer never
// interleave.
func (ch *channel) deliver(f *wire.Frame) (bool, error) {
	in := ch.peer.inbound
	in.mu.Lock()
	defer in.mu.Unlock()

	if ch.closed() {
		return false, nil
	}

	switch in.classify(f.Sequence) {
	case acceptDuplicate:
		ch.peer.stats.duplicates.Inc()
		return false, nil
	case acceptGap:
		ch.peer.stats.gaps.Inc()
		ch.manager.handler.SequenceGap(ch.peer.node, in.last+1, f.Sequence)
	}

	in.last = f.Sequence
	return true, ch.manager.handler.Deliver(ch.peer.node, f)
}

func (ch *channel) sendAck() {
	if session, last, ok := ch.peer.inbound.toAck(); ok {
		ch.pushControl(&wire.Frame{Kind: wire.KindAck, AckSession: session, Ack: last})
	}
}

func (ch *channel) heartbeatAnswered() {
	ch.awaiting.Store(false)
	if ch.missed.Swap(0) > 0 {
		ch.manager.recovered(ch)
	}
}

func (ch *channel) heartbeatLoop() {
	cfg := ch.manager.config
	tk := ticker.New(cfg.HeartbeatInterval())
	tk.Start()
	defer tk.Stop()

	for {
		select {
		case <-ch.done:
			return
		case <-ch.manager.ctx.Done():
			ch.close(gerrors.ErrConnectionClosed)
			return
		case <-tk.Ticks:
			if ch.awaiting.Load() {
				missed := ch.missed.Inc()
				if missed == 1 {
					ch.manager.degraded(ch)
				}
				if int(missed) >= cfg.MaxMissedHeartbeats() {
					ch.close(gerrors.ErrHeartbeatTimeout)
					return
				}
			}

			if ch.idle() {
				ch.goodbye(cfg.WriteTimeout())
				ch.close(errIdle)
				return
			}

			session, last := ch.peer.inbound.position()
			ch.awaiting.Store(true)
			ch.pushControl(&wire.Frame{
				Kind:        wire.KindHeartbeatRequest,
				Correlation: ch.correlation.Inc(),
				AckSession:  session,
				Ack:         last,
			})
		}
	}
}

func (ch *channel) idle() bool {
	timeout := ch.manager.config.IdleTimeout()
	if timeout <= 0 {
		return false
	}
	if time.Since(time.Unix(0, ch.lastActive.Load())) < timeout {
		return false
	}
	return ch.peer.outbox.outstanding() == 0
}
