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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	gerrors "github.com/tochemey/netactor/errors"
)

type greet struct {
	Text  string
	Count int
}

type position struct {
	X, Y int
}

type unregistered struct {
	Name string
}

func TestCBORSerializer(t *testing.T) {
	RegisterSerializableTypes(new(greet), position{})
	serializer := NewCBORSerializer()
	assert.Equal(t, CBORCodec, serializer.Codec())

	t.Run("With a pointer", func(t *testing.T) {
		name, data, err := serializer.Serialize(&greet{Text: "hi", Count: 2})
		require.NoError(t, err)
		assert.Equal(t, "*remote.greet", name)

		actual, err := serializer.Deserialize(name, data)
		require.NoError(t, err)
		assert.Equal(t, &greet{Text: "hi", Count: 2}, actual)
	})
	t.Run("With a value", func(t *testing.T) {
		name, data, err := serializer.Serialize(position{X: 1, Y: -3})
		require.NoError(t, err)
		assert.Equal(t, "remote.position", name)

		actual, err := serializer.Deserialize(name, data)
		require.NoError(t, err)
		assert.Equal(t, position{X: 1, Y: -3}, actual)
	})
	t.Run("With nil messages", func(t *testing.T) {
		_, _, err := serializer.Serialize(nil)
		assert.ErrorIs(t, err, ErrCBORNilMessage)
		_, _, err = serializer.Serialize((*greet)(nil))
		assert.ErrorIs(t, err, ErrCBORNilMessage)
	})
	t.Run("With an unregistered type", func(t *testing.T) {
		_, _, err := serializer.Serialize(&unregistered{Name: "x"})
		assert.ErrorIs(t, err, ErrCBORTypeNotRegistered)
		_, err = serializer.Deserialize("remote.unregistered", []byte{0xa0})
		assert.ErrorIs(t, err, ErrCBORTypeNotRegistered)
	})
	t.Run("With corrupted bytes", func(t *testing.T) {
		_, err := serializer.Deserialize("*remote.greet", []byte{0xff, 0x00})
		assert.ErrorIs(t, err, ErrCBORDeserializeFailed)
	})
}

func TestProtoSerializer(t *testing.T) {
	serializer := NewProtoSerializer()
	assert.Equal(t, ProtoCodec, serializer.Codec())

	name, data, err := serializer.Serialize(wrapperspb.String("hello"))
	require.NoError(t, err)
	assert.Equal(t, "google.protobuf.StringValue", name)

	actual, err := serializer.Deserialize(name, data)
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("hello"), actual.(proto.Message)))

	_, _, err = serializer.Serialize("not a proto")
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	_, err = serializer.Deserialize("does.not.Exist", data)
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	_, err = serializer.Deserialize(name, []byte{0xff})
	assert.ErrorIs(t, err, ErrUnmarshalBinaryFailed)
}

func TestConfigCodec(t *testing.T) {
	config := NewConfig("127.0.0.1", 0, WithSerializers(new(greet), NewCBORSerializer()))

	t.Run("With a proto message", func(t *testing.T) {
		tag, data, err := config.Encode(wrapperspb.Int64(7))
		require.NoError(t, err)
		assert.Equal(t, "proto:google.protobuf.Int64Value", tag)

		actual, err := config.Decode(tag, data)
		require.NoError(t, err)
		assert.EqualValues(t, 7, actual.(*wrapperspb.Int64Value).GetValue())
	})
	t.Run("With a registered Go type sent by value", func(t *testing.T) {
		tag, data, err := config.Encode(greet{Text: "hey"})
		require.NoError(t, err)
		assert.Equal(t, "cbor:remote.greet", tag)

		actual, err := config.Decode(tag, data)
		require.NoError(t, err)
		assert.Equal(t, greet{Text: "hey"}, actual)
	})
	t.Run("With no serializer", func(t *testing.T) {
		_, _, err := config.Encode(42)
		assert.ErrorIs(t, err, gerrors.ErrSerialization)
	})
	t.Run("With malformed tags", func(t *testing.T) {
		for _, tag := range []string{"", "cbor", "cbor:", "json:thing"} {
			_, err := config.Decode(tag, nil)
			assert.ErrorIs(t, err, gerrors.ErrSerialization, tag)
		}
	})
	t.Run("With corrupted payload", func(t *testing.T) {
		_, err := config.Decode("cbor:*remote.greet", []byte{0xff})
		assert.ErrorIs(t, err, gerrors.ErrSerialization)
	})
}
