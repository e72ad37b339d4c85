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

package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	gerrors "github.com/tochemey/netactor/errors"
)

func dataFrame(payload []byte) *Frame {
	return &Frame{
		Kind:        KindData,
		Sequence:    42,
		SourceNode:  "127.0.0.1:3000",
		SourceID:    "1",
		Destination: "grid-7",
		TypeTag:     "cbor:actor.ping",
		Payload:     payload,
	}
}

func TestKind(t *testing.T) {
	sequenced := []Kind{KindData, KindSpawn, KindStop, KindBroadcast, KindExpire, KindQuery, KindQueryResult}
	for _, k := range sequenced {
		assert.True(t, k.Sequenced(), k.String())
	}
	for _, k := range []Kind{KindHandshake, KindHeartbeatRequest, KindHeartbeatReply, KindAck, KindGoodbye} {
		assert.False(t, k.Sequenced(), k.String())
		assert.True(t, k.Valid())
	}
	assert.False(t, KindUnknown.Valid())
	assert.False(t, Kind(200).Valid())
	assert.Equal(t, "unknown", Kind(200).String())
	assert.Equal(t, "heartbeat-reply", KindHeartbeatReply.String())
	assert.Equal(t, "query-result", KindQueryResult.String())
	assert.True(t, KindQueryResult.Valid())
}

func TestFrameRoundTrip(t *testing.T) {
	t.Run("With every field set", func(t *testing.T) {
		frame := &Frame{
			Kind:        KindHandshake,
			Sequence:    1,
			Ack:         7,
			Correlation: 9,
			SourceNode:  "a:1",
			SourceID:    "src",
			Destination: "dst",
			TypeTag:     "tag",
			Payload:     []byte{1, 2, 3},
			Session:     "s1",
			AckSession:  "s0",
			Node:        "b:2",
			Compression: "zstd",
			KindName:    "cell",
			Error:       "boom",
		}
		data := frame.Encode(nil)
		assert.Len(t, data, frame.Size())

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, frame, decoded)
	})
	t.Run("With zero-length payload", func(t *testing.T) {
		frame := dataFrame([]byte{})
		decoded, err := Decode(frame.Encode(nil))
		require.NoError(t, err)
		require.NotNil(t, decoded.Payload)
		assert.Empty(t, decoded.Payload)
		assert.Equal(t, frame, decoded)
	})
	t.Run("With no payload", func(t *testing.T) {
		decoded, err := Decode((&Frame{Kind: KindAck, Ack: 3}).Encode(nil))
		require.NoError(t, err)
		assert.NotNil(t, decoded.Payload)
		assert.EqualValues(t, 3, decoded.Ack)
	})
	t.Run("With unknown fields", func(t *testing.T) {
		data := dataFrame([]byte("x")).Encode(nil)
		data = protowire.AppendTag(data, 99, protowire.BytesType)
		data = protowire.AppendString(data, "future")
		data = protowire.AppendTag(data, 100, protowire.VarintType)
		data = protowire.AppendVarint(data, 5)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, dataFrame([]byte("x")), decoded)
	})
	t.Run("With the payload copied out", func(t *testing.T) {
		data := dataFrame([]byte("hello")).Encode(nil)
		decoded, err := Decode(data)
		require.NoError(t, err)
		for i := range data {
			data[i] = 0
		}
		assert.Equal(t, []byte("hello"), decoded.Payload)
	})
}

func TestDecodeErrors(t *testing.T) {
	t.Run("With truncated body", func(t *testing.T) {
		data := dataFrame([]byte("hello")).Encode(nil)
		_, err := Decode(data[:len(data)-2])
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
	t.Run("With missing kind", func(t *testing.T) {
		_, err := Decode((&Frame{Sequence: 1}).Encode(nil))
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
	t.Run("With out of range kind", func(t *testing.T) {
		data := protowire.AppendTag(nil, fieldKind, protowire.VarintType)
		data = protowire.AppendVarint(data, 1000)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
	t.Run("With garbage", func(t *testing.T) {
		_, err := Decode([]byte{0xff, 0xff, 0xff})
		assert.ErrorIs(t, err, ErrMalformedFrame)
	})
}

func TestStream(t *testing.T) {
	t.Run("With several frames", func(t *testing.T) {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		frames := []*Frame{
			dataFrame([]byte("one")),
			{Kind: KindHeartbeatRequest, Correlation: 1, Ack: 2, Payload: []byte{}},
			dataFrame(bytes.Repeat([]byte{7}, 70_000)),
		}
		for _, frame := range frames {
			require.NoError(t, WriteFrame(w, frame, 0))
		}
		require.NoError(t, w.Flush())

		prefix := binary.BigEndian.Uint32(buf.Bytes()[:HeaderSize])
		assert.EqualValues(t, frames[0].Size(), prefix)

		r := bufio.NewReader(&buf)
		for _, want := range frames {
			got, err := ReadFrame(r, 0)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		_, err := ReadFrame(r, 0)
		assert.ErrorIs(t, err, io.EOF)
	})
	t.Run("With maximum size payload", func(t *testing.T) {
		frame := dataFrame(bytes.Repeat([]byte{1}, 1<<16))
		maxSize := frame.Size()

		data, err := Marshal(frame, maxSize)
		require.NoError(t, err)

		decoded, err := ReadFrame(bytes.NewReader(data), maxSize)
		require.NoError(t, err)
		assert.Equal(t, frame, decoded)

		frame.Payload = append(frame.Payload, 1)
		_, err = Marshal(frame, maxSize)
		assert.ErrorIs(t, err, gerrors.ErrFrameTooLarge)
	})
	t.Run("With an oversized prefix", func(t *testing.T) {
		data, err := Marshal(dataFrame([]byte("abc")), 0)
		require.NoError(t, err)
		_, err = ReadFrame(bytes.NewReader(data), 8)
		assert.ErrorIs(t, err, gerrors.ErrFrameTooLarge)
	})
	t.Run("With a truncated body", func(t *testing.T) {
		data, err := Marshal(dataFrame([]byte("abc")), 0)
		require.NoError(t, err)
		_, err = ReadFrame(bytes.NewReader(data[:len(data)-1]), 0)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestFramePool(t *testing.T) {
	pool := newFramePool()
	buf := pool.get(300)
	assert.Len(t, buf, 300)
	assert.Equal(t, 512, cap(buf))
	pool.put(buf)

	big := pool.get(8 << 20)
	assert.Len(t, big, 8<<20)
	pool.put(big)

	assert.Equal(t, 0, bucketIndex(10))
	assert.Equal(t, -1, bucketIndexExact(300))
}
