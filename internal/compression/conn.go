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

// Package compression wraps a connection in a streaming compression layer.
// Each write is flushed so that the peer can decode a frame as soon as it is
// written.
package compression

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

var (
	// ErrEncoderInit is returned when a pooled compressor cannot be created
	ErrEncoderInit = errors.New("compression: failed to initialize the encoder")
	// ErrDecoderInit is returned when a pooled decompressor cannot be created
	ErrDecoderInit = errors.New("compression: failed to initialize the decoder")
)

// ConnWrapper transforms a net.Conn by adding a compression layer.
// Implementations must be safe to call from multiple goroutines.
type ConnWrapper interface {
	Wrap(conn net.Conn) (net.Conn, error)
}

type flushWriter interface {
	io.Writer
	Flush() error
}

type compressedConn struct {
	raw    net.Conn
	reader io.Reader
	writer flushWriter
	closer func() error

	writeMu sync.Mutex
	once    sync.Once
	err     error
}

func newCompressedConn(raw net.Conn, r io.Reader, w flushWriter, closer func() error) *compressedConn {
	return &compressedConn{
		raw:    raw,
		reader: r,
		writer: w,
		closer: closer,
	}
}

func (c *compressedConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *compressedConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	n, err := c.writer.Write(p)
	if err != nil {
		return n, err
	}
	if ferr := c.writer.Flush(); ferr != nil {
		return n, ferr
	}
	return n, nil
}

// Close closes the raw connection first so that blocked readers and writers
// return before the codec resources are released. The compressed stream
// trailer is not sent: the peer observes end of stream on the socket.
func (c *compressedConn) Close() error {
	c.once.Do(func() {
		c.err = c.raw.Close()
		c.writeMu.Lock()
		_ = c.closer()
		c.writeMu.Unlock()
	})
	return c.err
}

func (c *compressedConn) LocalAddr() net.Addr                { return c.raw.LocalAddr() }
func (c *compressedConn) RemoteAddr() net.Addr               { return c.raw.RemoteAddr() }
func (c *compressedConn) SetDeadline(t time.Time) error      { return c.raw.SetDeadline(t) }
func (c *compressedConn) SetReadDeadline(t time.Time) error  { return c.raw.SetReadDeadline(t) }
func (c *compressedConn) SetWriteDeadline(t time.Time) error { return c.raw.SetWriteDeadline(t) }
