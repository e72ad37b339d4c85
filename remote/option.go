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
	"reflect"
	"time"

	"github.com/tochemey/netactor/backpressure"
	"github.com/tochemey/netactor/tls"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Config)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithMaxFrameSize sets the largest frame body. Valid values are between
// 16KB and 16MB inclusive.
func WithMaxFrameSize(size uint32) Option {
	return OptionFunc(func(config *Config) {
		config.maxFrameSize = size
	})
}

// WithDialTimeout sets the TCP connect timeout
func WithDialTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.dialTimeout = timeout
	})
}

// WithHandshakeTimeout sets the handshake deadline
func WithHandshakeTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.handshakeTimeout = timeout
	})
}

// WithWriteTimeout sets the write deadline of a flush
func WithWriteTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.writeTimeout = timeout
	})
}

// WithKeepAlive sets the TCP keep-alive period
func WithKeepAlive(keepAlive time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.keepAlive = keepAlive
	})
}

// WithIdleTimeout sets how long a quiet connection stays open.
// Zero keeps connections open.
func WithIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.idleTimeout = timeout
	})
}

// WithHeartbeat sets the heartbeat period and the number of consecutive
// heartbeats that may go unanswered before the connection is closed
func WithHeartbeat(interval time.Duration, maxMissed int) Option {
	return OptionFunc(func(config *Config) {
		config.heartbeatInterval = interval
		config.maxMissedHeartbeats = maxMissed
	})
}

// WithReconnect sets the reconnect cycle: attempts and exponential backoff bounds
func WithReconnect(retries int, initialBackoff, maxBackoff time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.reconnectRetries = retries
		config.reconnectInitialBackoff = initialBackoff
		config.reconnectMaxBackoff = maxBackoff
	})
}

// WithUnreachableCooldown sets how long sends fail fast once a peer is
// declared unreachable
func WithUnreachableCooldown(cooldown time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.unreachableCooldown = cooldown
	})
}

// WithOutbox sets the per peer queue capacity and its overflow policy
func WithOutbox(capacity int, policy backpressure.Policy) Option {
	return OptionFunc(func(config *Config) {
		config.outboxCapacity = capacity
		config.outboxPolicy = policy
	})
}

// WithAckEvery sets how many delivered frames trigger an acknowledgement
func WithAckEvery(n int) Option {
	return OptionFunc(func(config *Config) {
		config.ackEvery = n
	})
}

// WithCompression sets the stream compression
func WithCompression(compression Compression) Option {
	return OptionFunc(func(config *Config) {
		config.compression = compression
	})
}

// WithTLS enables TLS on every peer connection
func WithTLS(info *tls.Info) Option {
	return OptionFunc(func(config *Config) {
		config.tlsInfo = info
	})
}

// WithSerializers registers serializer for the type of msg. msg can be a
// value, a pointer, or a nil pointer to an interface type such as
// (*MyInterface)(nil) to match every implementation.
// Concrete types given with a CBORSerializer are registered for decoding.
func WithSerializers(msg any, serializer Serializer) Option {
	return OptionFunc(func(config *Config) {
		if msg == nil || serializer == nil {
			return
		}

		typ := reflect.TypeOf(msg)
		if typ.Kind() == reflect.Ptr && typ.Elem().Kind() == reflect.Interface {
			typ = typ.Elem()
		}

		config.register(typ, serializer)
		if _, ok := serializer.(interface{ registryRequired() }); ok && typ.Kind() != reflect.Interface {
			RegisterSerializableTypes(msg)
		}
	})
}
