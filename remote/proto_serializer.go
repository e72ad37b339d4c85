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
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// ProtoCodec is the type tag prefix of protobuf payloads
const ProtoCodec = "proto"

// Proto serializer errors.
var (
	// ErrUnknownMessageType is returned for a nil message or a type missing
	// from the protobuf global registry
	ErrUnknownMessageType = errors.New("remote: unknown proto message type")
	// ErrMarshalBinaryFailed wraps a proto marshal failure
	ErrMarshalBinaryFailed = errors.New("remote: failed to marshal proto message")
	// ErrUnmarshalBinaryFailed wraps a proto unmarshal failure
	ErrUnmarshalBinaryFailed = errors.New("remote: failed to unmarshal proto message")
)

// ProtoSerializer encodes proto.Message values. The type name is the
// message full name, resolved on the receiving side through
// protoregistry.GlobalTypes.
type ProtoSerializer struct{}

var _ Serializer = (*ProtoSerializer)(nil)

// NewProtoSerializer returns a ProtoSerializer
func NewProtoSerializer() *ProtoSerializer {
	return &ProtoSerializer{}
}

// Codec implements Serializer
func (x *ProtoSerializer) Codec() string {
	return ProtoCodec
}

// Serialize implements Serializer
func (x *ProtoSerializer) Serialize(message any) (string, []byte, error) {
	msg, ok := message.(proto.Message)
	if !ok || msg == nil {
		return "", nil, ErrUnknownMessageType
	}

	name := proto.MessageName(msg)
	if name == "" {
		return "", nil, ErrUnknownMessageType
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(msg)
	if err != nil {
		return "", nil, errors.Join(ErrMarshalBinaryFailed, err)
	}
	return string(name), data, nil
}

// Deserialize implements Serializer
func (x *ProtoSerializer) Deserialize(typeName string, data []byte) (any, error) {
	msgType, err := protoregistry.GlobalTypes.FindMessageByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownMessageType, typeName, err)
	}

	msg := msgType.New().Interface()
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.Join(ErrUnmarshalBinaryFailed, err)
	}
	return msg, nil
}
