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
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"

	"github.com/tochemey/netactor/backpressure"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/tcp"
	"github.com/tochemey/netactor/internal/validation"
	"github.com/tochemey/netactor/tls"
)

const (
	kb = 1024
	mb = 1024 * kb
)

// Config defines how an environment talks to its peers.
//
// BindAddr should be a physical IP address rather than a DNS name: it is the
// identity peers use to address this environment. When BindAddr is 0.0.0.0,
// Sanitize replaces it with a private interface address, falling back to a
// public one.
type Config struct {
	bindAddr string
	bindPort int

	maxFrameSize     uint32
	dialTimeout      time.Duration
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	keepAlive        time.Duration
	idleTimeout      time.Duration

	heartbeatInterval   time.Duration
	maxMissedHeartbeats int

	reconnectRetries        int
	reconnectInitialBackoff time.Duration
	reconnectMaxBackoff     time.Duration
	unreachableCooldown     time.Duration

	outboxCapacity int
	outboxPolicy   backpressure.Policy
	ackEvery       int

	compression Compression
	tlsInfo     *tls.Info

	// serializers are matched by exact type first, then by interface
	serializers map[reflect.Type]Serializer
	codecs      map[string]Serializer
}

var _ validation.Validator = (*Config)(nil)

// NewConfig returns a Config for the given bind address and port
func NewConfig(bindAddr string, bindPort int, opts ...Option) *Config {
	cfg := &Config{
		bindAddr:                bindAddr,
		bindPort:                bindPort,
		maxFrameSize:            16 * mb,
		dialTimeout:             5 * time.Second,
		handshakeTimeout:        5 * time.Second,
		writeTimeout:            10 * time.Second,
		keepAlive:               15 * time.Second,
		idleTimeout:             20 * time.Minute,
		heartbeatInterval:       time.Second,
		maxMissedHeartbeats:     3,
		reconnectRetries:        5,
		reconnectInitialBackoff: 100 * time.Millisecond,
		reconnectMaxBackoff:     2 * time.Second,
		unreachableCooldown:     5 * time.Second,
		outboxCapacity:          4096,
		outboxPolicy:            backpressure.NewFailFast(),
		ackEvery:                64,
		compression:             NoCompression,
		serializers:             make(map[reflect.Type]Serializer, 4),
		codecs:                  make(map[string]Serializer, 2),
	}

	cfg.register(reflect.TypeOf((*proto.Message)(nil)).Elem(), NewProtoSerializer())

	for _, opt := range opts {
		opt.Apply(cfg)
	}
	return cfg
}

// DefaultConfig returns a Config bound to 127.0.0.1 on an OS assigned port
func DefaultConfig() *Config {
	return NewConfig("127.0.0.1", 0)
}

// BindAddr returns the bind address
func (x *Config) BindAddr() string {
	return x.bindAddr
}

// BindPort returns the bind port
func (x *Config) BindPort() int {
	return x.bindPort
}

// MaxFrameSize returns the largest frame body accepted or produced
func (x *Config) MaxFrameSize() uint32 {
	return x.maxFrameSize
}

// DialTimeout returns the TCP connect timeout
func (x *Config) DialTimeout() time.Duration {
	return x.dialTimeout
}

// HandshakeTimeout returns the deadline for the handshake exchange
func (x *Config) HandshakeTimeout() time.Duration {
	return x.handshakeTimeout
}

// WriteTimeout returns the deadline of a single flush to the socket
func (x *Config) WriteTimeout() time.Duration {
	return x.writeTimeout
}

// KeepAlive returns the TCP keep-alive period
func (x *Config) KeepAlive() time.Duration {
	return x.keepAlive
}

// IdleTimeout returns how long a connection without sequenced traffic stays
// open. Zero disables idle closing.
func (x *Config) IdleTimeout() time.Duration {
	return x.idleTimeout
}

// HeartbeatInterval returns the heartbeat period
func (x *Config) HeartbeatInterval() time.Duration {
	return x.heartbeatInterval
}

// MaxMissedHeartbeats returns how many consecutive heartbeats may go
// unanswered before the connection is closed
func (x *Config) MaxMissedHeartbeats() int {
	return x.maxMissedHeartbeats
}

// ReconnectRetries returns the number of connect attempts of a reconnect cycle
func (x *Config) ReconnectRetries() int {
	return x.reconnectRetries
}

// ReconnectInitialBackoff returns the first backoff of a reconnect cycle
func (x *Config) ReconnectInitialBackoff() time.Duration {
	return x.reconnectInitialBackoff
}

// ReconnectMaxBackoff returns the backoff ceiling of a reconnect cycle
func (x *Config) ReconnectMaxBackoff() time.Duration {
	return x.reconnectMaxBackoff
}

// UnreachableCooldown returns how long sends to a failed peer fail fast
func (x *Config) UnreachableCooldown() time.Duration {
	return x.unreachableCooldown
}

// OutboxCapacity returns the per peer limit of unacknowledged frames
func (x *Config) OutboxCapacity() int {
	return x.outboxCapacity
}

// OutboxPolicy returns the overflow policy of the per peer queue
func (x *Config) OutboxPolicy() backpressure.Policy {
	return x.outboxPolicy
}

// AckEvery returns how many delivered frames trigger an acknowledgement
func (x *Config) AckEvery() int {
	return x.ackEvery
}

// Compression returns the stream compression
func (x *Config) Compression() Compression {
	return x.compression
}

// TLS returns the TLS settings, nil when TLS is off
func (x *Config) TLS() *tls.Info {
	return x.tlsInfo
}

// Serializer returns the Serializer registered for msg: the entry of its
// exact type, else the first interface it implements. It returns nil when
// nothing matches.
func (x *Config) Serializer(msg any) Serializer {
	msgType := reflect.TypeOf(msg)
	if msgType == nil {
		return nil
	}

	if serializer, ok := x.serializers[msgType]; ok {
		return serializer
	}
	if msgType.Kind() == reflect.Ptr {
		if serializer, ok := x.serializers[msgType.Elem()]; ok {
			return serializer
		}
	} else if serializer, ok := x.serializers[reflect.PointerTo(msgType)]; ok {
		return serializer
	}

	for typ, serializer := range x.serializers {
		if typ.Kind() == reflect.Interface && msgType.Implements(typ) {
			return serializer
		}
	}
	return nil
}

// Serializers returns a copy of the registered serializers
func (x *Config) Serializers() map[reflect.Type]Serializer {
	result := make(map[reflect.Type]Serializer, len(x.serializers))
	for k, v := range x.serializers {
		result[k] = v
	}
	return result
}

// Encode serializes msg and returns the frame type tag and payload.
// Failures wrap ErrSerialization.
func (x *Config) Encode(msg any) (string, []byte, error) {
	serializer := x.Serializer(msg)
	if serializer == nil {
		return "", nil, fmt.Errorf("%w: no serializer registered for %T", gerrors.ErrSerialization, msg)
	}

	typeName, data, err := serializer.Serialize(msg)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", gerrors.ErrSerialization, err)
	}
	if data == nil {
		data = []byte{}
	}
	return serializer.Codec() + ":" + typeName, data, nil
}

// Decode is the inverse of Encode. Failures wrap ErrSerialization.
func (x *Config) Decode(tag string, data []byte) (any, error) {
	codec, typeName, ok := strings.Cut(tag, ":")
	if !ok || typeName == "" {
		return nil, fmt.Errorf("%w: malformed type tag %q", gerrors.ErrSerialization, tag)
	}

	serializer, ok := x.codecs[codec]
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", gerrors.ErrSerialization, codec)
	}

	msg, err := serializer.Deserialize(typeName, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gerrors.ErrSerialization, err)
	}
	return msg, nil
}

// Sanitize resolves an unspecified bind address to a concrete one
func (x *Config) Sanitize() error {
	hostPort := net.JoinHostPort(x.bindAddr, strconv.Itoa(x.bindPort))
	bindAddr, err := tcp.GetBindIP(hostPort)
	if err != nil {
		return err
	}
	x.bindAddr = bindAddr
	return nil
}

// Validate checks the configuration
func (x *Config) Validate() error {
	return validation.
		New(validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("bindAddr", x.bindAddr)).
		AddAssertion(x.bindPort >= 0 && x.bindPort <= 65535, "invalid bindPort").
		AddAssertion(x.maxFrameSize >= 16*kb && x.maxFrameSize <= 16*mb, "maxFrameSize must be between 16KB and 16MB").
		AddValidator(validation.NewPositiveDurationValidator("dialTimeout", x.dialTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("handshakeTimeout", x.handshakeTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("writeTimeout", x.writeTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("keepAlive", x.keepAlive)).
		AddValidator(validation.NewPositiveDurationValidator("heartbeatInterval", x.heartbeatInterval)).
		AddValidator(validation.NewPositiveDurationValidator("reconnectInitialBackoff", x.reconnectInitialBackoff)).
		AddAssertion(x.idleTimeout >= 0, "idleTimeout must not be negative").
		AddAssertion(x.unreachableCooldown >= 0, "unreachableCooldown must not be negative").
		AddAssertion(x.maxMissedHeartbeats > 0, "maxMissedHeartbeats must be greater than 0").
		AddAssertion(x.reconnectRetries > 0, "reconnectRetries must be greater than 0").
		AddAssertion(x.reconnectMaxBackoff >= x.reconnectInitialBackoff, "reconnectMaxBackoff must not be below reconnectInitialBackoff").
		AddAssertion(x.outboxCapacity > 0, "outboxCapacity must be greater than 0").
		AddAssertion(x.ackEvery > 0, "ackEvery must be greater than 0").
		AddAssertion(x.compression >= NoCompression && x.compression <= BrotliCompression, "invalid compression").
		AddAssertion(x.tlsInfo == nil || x.tlsInfo.Enabled(), "TLS requires both the client and the server configuration").
		AddAssertion(len(x.serializers) > 0, "at least one serializer is required").
		Validate()
}

func (x *Config) register(typ reflect.Type, serializer Serializer) {
	x.serializers[typ] = serializer
	x.codecs[serializer.Codec()] = serializer
}
