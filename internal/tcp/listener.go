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

package tcp

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ConnHandler services one accepted connection. It owns the connection.
type ConnHandler func(conn net.Conn)

// Listener accepts TCP connections and hands each one to a handler on its
// own goroutine. TLS is applied before the handler sees the connection.
type Listener struct {
	listener  net.Listener
	tlsConfig *tls.Config
	keepAlive time.Duration
	handler   ConnHandler

	shutdown *atomic.Bool
	accepted *atomic.Int64
	active   *atomic.Int32
	wg       sync.WaitGroup
}

// Listen binds address. A nil tlsConfig accepts plain TCP.
func Listen(ctx context.Context, address string, tlsConfig *tls.Config, keepAlive time.Duration) (*Listener, error) {
	lc := net.ListenConfig{KeepAlive: keepAlive}
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	return &Listener{
		listener:  listener,
		tlsConfig: tlsConfig,
		keepAlive: keepAlive,
		shutdown:  atomic.NewBool(false),
		accepted:  atomic.NewInt64(0),
		active:    atomic.NewInt32(0),
	}, nil
}

// Addr returns the bound address
func (l *Listener) Addr() *net.TCPAddr {
	return l.listener.Addr().(*net.TCPAddr)
}

// Serve runs the accept loop until Close is called
func (l *Listener) Serve(handler ConnHandler) error {
	l.handler = handler
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if l.shutdown.Load() {
				return nil
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}

		l.accepted.Inc()
		l.wg.Add(1)
		go l.serveConn(conn)
	}
}

// Close stops accepting and waits for the running handlers to return
func (l *Listener) Close() error {
	if !l.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	err := l.listener.Close()
	l.wg.Wait()
	return err
}

// AcceptedConnections returns the number of accepted connections
func (l *Listener) AcceptedConnections() int64 {
	return l.accepted.Load()
}

// ActiveConnections returns the number of connections being served
func (l *Listener) ActiveConnections() int32 {
	return l.active.Load()
}

func (l *Listener) serveConn(conn net.Conn) {
	defer l.wg.Done()
	l.active.Inc()
	defer l.active.Dec()

	if l.tlsConfig != nil {
		conn = tls.Server(conn, l.tlsConfig)
	}
	l.handler(conn)
}

// Dial opens a connection to address within timeout. A nil tlsConfig dials
// plain TCP.
func Dial(ctx context.Context, address string, timeout time.Duration, tlsConfig *tls.Config, keepAlive time.Duration) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: keepAlive}
	if tlsConfig != nil {
		td := &tls.Dialer{NetDialer: dialer, Config: tlsConfig}
		return td.DialContext(ctx, "tcp", address)
	}
	return dialer.DialContext(ctx, "tcp", address)
}
