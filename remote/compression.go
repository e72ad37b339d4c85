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

package remote

import (
	"fmt"
	"strings"

	"github.com/tochemey/netactor/internal/compression"
)

// Compression is the stream compression applied to every peer connection
// after the handshake. Both environments must configure the same algorithm:
// the handshake carries it and a mismatch rejects the connection.
type Compression int

const (
	// NoCompression sends frames as they are
	NoCompression Compression = iota
	// GzipCompression uses gzip (RFC 1952)
	GzipCompression
	// ZstdCompression uses Zstandard (RFC 8878). It has the best ratio to CPU
	// trade-off of the supported algorithms.
	ZstdCompression
	// BrotliCompression uses Brotli (RFC 7932). It compresses best and
	// slowest.
	BrotliCompression
)

// String returns the name exchanged in the handshake
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case GzipCompression:
		return "gzip"
	case ZstdCompression:
		return "zstd"
	case BrotliCompression:
		return "brotli"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

// ParseCompression is the inverse of String
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoCompression, nil
	case "gzip":
		return GzipCompression, nil
	case "zstd":
		return ZstdCompression, nil
	case "brotli":
		return BrotliCompression, nil
	default:
		return NoCompression, fmt.Errorf("unknown compression %q", name)
	}
}

// ConnWrapper returns the wrapper that applies the algorithm to a connection.
// It returns nil for NoCompression.
func (c Compression) ConnWrapper() (compression.ConnWrapper, error) {
	switch c {
	case NoCompression:
		return nil, nil
	case GzipCompression:
		return compression.NewGzipConnWrapper(gzipLevel)
	case ZstdCompression:
		return compression.NewZstdConnWrapper()
	case BrotliCompression:
		return compression.NewBrotliConnWrapper(compression.WithBrotliLevel(brotliLevel)), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", int(c))
	}
}

const (
	gzipLevel   = 1
	brotliLevel = 4
)
