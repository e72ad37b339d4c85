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

package compression

import (
	"io"
	"net"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipConnWrapper wraps connections with gzip compression
type GzipConnWrapper struct {
	level      int
	writerPool sync.Pool
}

// NewGzipConnWrapper creates a GzipConnWrapper. An invalid level is
// reported eagerly.
func NewGzipConnWrapper(level int) (*GzipConnWrapper, error) {
	probe, err := gzip.NewWriterLevel(io.Discard, level)
	if err != nil {
		return nil, err
	}

	w := &GzipConnWrapper{level: level}
	w.writerPool.Put(probe)
	w.writerPool.New = func() any {
		gw, err := gzip.NewWriterLevel(nil, w.level)
		if err != nil {
			return nil
		}
		return gw
	}
	return w, nil
}

// Wrap applies gzip compression to conn
func (g *GzipConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	gw, ok := g.writerPool.Get().(*gzip.Writer)
	if !ok || gw == nil {
		return nil, ErrEncoderInit
	}
	gw.Reset(conn)

	closer := func() error {
		closeErr := gw.Close()
		gw.Reset(io.Discard)
		g.writerPool.Put(gw)
		return closeErr
	}

	return newCompressedConn(conn, &lazyGzipReader{src: conn}, &gzipFlushWriter{w: gw}, closer), nil
}

// lazyGzipReader defers reading the gzip header to the first Read, since
// gzip.NewReader blocks until the peer has written something.
type lazyGzipReader struct {
	src io.Reader
	zr  *gzip.Reader
}

func (r *lazyGzipReader) Read(p []byte) (int, error) {
	if r.zr == nil {
		zr, err := gzip.NewReader(r.src)
		if err != nil {
			return 0, err
		}
		zr.Multistream(false)
		r.zr = zr
	}
	return r.zr.Read(p)
}

type gzipFlushWriter struct {
	w *gzip.Writer
}

func (f *gzipFlushWriter) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *gzipFlushWriter) Flush() error                { return f.w.Flush() }

var _ ConnWrapper = (*GzipConnWrapper)(nil)
var _ flushWriter = (*gzipFlushWriter)(nil)
