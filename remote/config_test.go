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
	"crypto/tls"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/tochemey/netactor/backpressure"
	ntls "github.com/tochemey/netactor/tls"
)

type shape interface {
	Area() int
}

type square struct {
	Side int
}

func (s square) Area() int { return s.Side * s.Side }

func TestConfig(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		config := DefaultConfig()
		require.NoError(t, config.Validate())

		assert.Equal(t, "127.0.0.1", config.BindAddr())
		assert.Zero(t, config.BindPort())
		assert.EqualValues(t, 16*mb, config.MaxFrameSize())
		assert.Equal(t, 5*time.Second, config.DialTimeout())
		assert.Equal(t, 5*time.Second, config.HandshakeTimeout())
		assert.Equal(t, 10*time.Second, config.WriteTimeout())
		assert.Equal(t, 15*time.Second, config.KeepAlive())
		assert.Equal(t, 20*time.Minute, config.IdleTimeout())
		assert.Equal(t, time.Second, config.HeartbeatInterval())
		assert.Equal(t, 3, config.MaxMissedHeartbeats())
		assert.Equal(t, 5, config.ReconnectRetries())
		assert.Equal(t, 100*time.Millisecond, config.ReconnectInitialBackoff())
		assert.Equal(t, 2*time.Second, config.ReconnectMaxBackoff())
		assert.Equal(t, 5*time.Second, config.UnreachableCooldown())
		assert.Equal(t, 4096, config.OutboxCapacity())
		assert.Equal(t, backpressure.FailFast, config.OutboxPolicy().Mode())
		assert.Equal(t, 64, config.AckEvery())
		assert.Equal(t, NoCompression, config.Compression())
		assert.Nil(t, config.TLS())

		serializers := config.Serializers()
		require.Len(t, serializers, 1)
		_, ok := serializers[reflect.TypeOf((*proto.Message)(nil)).Elem()]
		assert.True(t, ok)
	})
	t.Run("With options", func(t *testing.T) {
		info := &ntls.Info{ClientConfig: &tls.Config{}, ServerConfig: &tls.Config{}}
		config := NewConfig("127.0.0.1", 9000,
			WithMaxFrameSize(64*kb),
			WithDialTimeout(time.Second),
			WithHandshakeTimeout(2*time.Second),
			WithWriteTimeout(3*time.Second),
			WithKeepAlive(4*time.Second),
			WithIdleTimeout(0),
			WithHeartbeat(50*time.Millisecond, 2),
			WithReconnect(3, 10*time.Millisecond, 40*time.Millisecond),
			WithUnreachableCooldown(time.Minute),
			WithOutbox(8, backpressure.NewBlockWithTimeout(time.Second)),
			WithAckEvery(4),
			WithCompression(ZstdCompression),
			WithTLS(info),
			WithSerializers((*shape)(nil), NewCBORSerializer()),
		)
		require.NoError(t, config.Validate())

		assert.EqualValues(t, 64*kb, config.MaxFrameSize())
		assert.Equal(t, time.Second, config.DialTimeout())
		assert.Equal(t, 2*time.Second, config.HandshakeTimeout())
		assert.Equal(t, 3*time.Second, config.WriteTimeout())
		assert.Equal(t, 4*time.Second, config.KeepAlive())
		assert.Zero(t, config.IdleTimeout())
		assert.Equal(t, 50*time.Millisecond, config.HeartbeatInterval())
		assert.Equal(t, 2, config.MaxMissedHeartbeats())
		assert.Equal(t, 3, config.ReconnectRetries())
		assert.Equal(t, time.Minute, config.UnreachableCooldown())
		assert.Equal(t, 8, config.OutboxCapacity())
		assert.True(t, config.OutboxPolicy().Blocking())
		assert.Equal(t, 4, config.AckEvery())
		assert.Equal(t, ZstdCompression, config.Compression())
		assert.Same(t, info, config.TLS())

		assert.IsType(t, &CBORSerializer{}, config.Serializer(square{Side: 2}))
		assert.Nil(t, config.Serializer(nil))
		assert.Nil(t, config.Serializer("plain string"))
	})
	t.Run("With invalid values", func(t *testing.T) {
		config := NewConfig("", 70000,
			WithMaxFrameSize(10),
			WithHeartbeat(0, 0),
			WithReconnect(0, time.Second, time.Millisecond),
			WithOutbox(0, backpressure.NewFailFast()),
			WithAckEvery(0),
			WithCompression(Compression(9)),
			WithTLS(&ntls.Info{}),
		)
		err := config.Validate()
		require.Error(t, err)
		for _, msg := range []string{
			"bindAddr",
			"invalid bindPort",
			"maxFrameSize",
			"heartbeatInterval",
			"maxMissedHeartbeats",
			"reconnectRetries",
			"reconnectMaxBackoff",
			"outboxCapacity",
			"ackEvery",
			"invalid compression",
			"TLS requires",
		} {
			assert.Contains(t, err.Error(), msg)
		}
	})
	t.Run("With sanitize", func(t *testing.T) {
		config := NewConfig("127.0.0.1", 3000)
		require.NoError(t, config.Sanitize())
		assert.Equal(t, "127.0.0.1", config.BindAddr())

		config = NewConfig("256.1.1.1", 3000)
		assert.Error(t, config.Sanitize())
	})
}

func TestCompression(t *testing.T) {
	for _, c := range []Compression{NoCompression, GzipCompression, ZstdCompression, BrotliCompression} {
		parsed, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)

		wrapper, err := c.ConnWrapper()
		require.NoError(t, err)
		if c == NoCompression {
			assert.Nil(t, wrapper)
		} else {
			assert.NotNil(t, wrapper)
		}
	}

	_, err := ParseCompression("lz4")
	assert.Error(t, err)
	_, err = Compression(9).ConnWrapper()
	assert.Error(t, err)
	assert.Equal(t, "compression(9)", Compression(9).String())
}
