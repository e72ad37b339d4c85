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

// Package wire defines the frame exchanged between two environments and its
// binary encoding. A frame on the stream is a 4-byte big-endian length
// followed by a protobuf wire format body.
package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedFrame is returned when a frame body cannot be decoded
var ErrMalformedFrame = errors.New("wire: malformed frame")

const (
	fieldKind        protowire.Number = 1
	fieldSequence    protowire.Number = 2
	fieldAck         protowire.Number = 3
	fieldCorrelation protowire.Number = 4
	fieldSourceNode  protowire.Number = 5
	fieldSourceID    protowire.Number = 6
	fieldDestination protowire.Number = 7
	fieldTypeTag     protowire.Number = 8
	fieldPayload     protowire.Number = 9
	fieldSession     protowire.Number = 10
	fieldAckSession  protowire.Number = 11
	fieldNode        protowire.Number = 12
	fieldCompression protowire.Number = 13
	fieldKindName    protowire.Number = 14
	fieldError       protowire.Number = 15
)

// Frame is the unit exchanged on a connection. Which fields are meaningful
// depends on Kind:
//
//   - Handshake: Node, Session, AckSession, Ack, Compression, Error
//   - Data: Sequence, SourceNode, SourceID, Destination, TypeTag, Payload
//   - Spawn: Sequence, Destination (the new actor id), KindName, SourceNode, SourceID
//   - Stop: Sequence, Destination
//   - Broadcast: Sequence, SourceNode, SourceID, TypeTag, Payload
//   - Expire, Goodbye: Sequence (Expire only)
//   - Query: Sequence, Correlation, Destination (the actor id looked up)
//   - QueryResult: Sequence, Correlation, Destination (set only when found)
//   - HeartbeatRequest, HeartbeatReply: Correlation, Ack
//   - Ack: Ack
type Frame struct {
	Kind        Kind
	Sequence    uint64
	Ack         uint64
	Correlation uint64
	SourceNode  string
	SourceID    string
	Destination string
	TypeTag     string
	Payload     []byte
	Session     string
	AckSession  string
	Node        string
	Compression string
	KindName    string
	Error       string
}

// Size returns the encoded size of the frame body
func (f *Frame) Size() int {
	n := 0
	n += sizeVarint(fieldKind, uint64(f.Kind))
	n += sizeVarint(fieldSequence, f.Sequence)
	n += sizeVarint(fieldAck, f.Ack)
	n += sizeVarint(fieldCorrelation, f.Correlation)
	n += sizeString(fieldSourceNode, f.SourceNode)
	n += sizeString(fieldSourceID, f.SourceID)
	n += sizeString(fieldDestination, f.Destination)
	n += sizeString(fieldTypeTag, f.TypeTag)
	if f.Payload != nil {
		n += protowire.SizeTag(fieldPayload) + protowire.SizeBytes(len(f.Payload))
	}
	n += sizeString(fieldSession, f.Session)
	n += sizeString(fieldAckSession, f.AckSession)
	n += sizeString(fieldNode, f.Node)
	n += sizeString(fieldCompression, f.Compression)
	n += sizeString(fieldKindName, f.KindName)
	n += sizeString(fieldError, f.Error)
	return n
}

// Encode appends the frame body to b
func (f *Frame) Encode(b []byte) []byte {
	b = appendVarint(b, fieldKind, uint64(f.Kind))
	b = appendVarint(b, fieldSequence, f.Sequence)
	b = appendVarint(b, fieldAck, f.Ack)
	b = appendVarint(b, fieldCorrelation, f.Correlation)
	b = appendString(b, fieldSourceNode, f.SourceNode)
	b = appendString(b, fieldSourceID, f.SourceID)
	b = appendString(b, fieldDestination, f.Destination)
	b = appendString(b, fieldTypeTag, f.TypeTag)
	if f.Payload != nil {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Payload)
	}
	b = appendString(b, fieldSession, f.Session)
	b = appendString(b, fieldAckSession, f.AckSession)
	b = appendString(b, fieldNode, f.Node)
	b = appendString(b, fieldCompression, f.Compression)
	b = appendString(b, fieldKindName, f.KindName)
	b = appendString(b, fieldError, f.Error)
	return b
}

// Decode parses a frame body. The payload is copied out of b so that b can
// be reused. A frame without a payload decodes to a non-nil empty payload.
// Unknown fields are skipped.
func Decode(b []byte) (*Frame, error) {
	f := new(Frame)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType && num <= fieldCorrelation:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(m))
			}
			b = b[m:]
			switch num {
			case fieldKind:
				if v > 0xff {
					return nil, fmt.Errorf("%w: kind %d out of range", ErrMalformedFrame, v)
				}
				f.Kind = Kind(v)
			case fieldSequence:
				f.Sequence = v
			case fieldAck:
				f.Ack = v
			case fieldCorrelation:
				f.Correlation = v
			}
		case typ == protowire.BytesType && num >= fieldSourceNode && num <= fieldError:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(m))
			}
			b = b[m:]
			if num == fieldPayload {
				f.Payload = append(make([]byte, 0, len(v)), v...)
				continue
			}
			f.setString(num, string(v))
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %w", ErrMalformedFrame, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}

	if !f.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedFrame, f.Kind)
	}
	if f.Payload == nil {
		f.Payload = []byte{}
	}
	return f, nil
}

func (f *Frame) setString(num protowire.Number, v string) {
	switch num {
	case fieldSourceNode:
		f.SourceNode = v
	case fieldSourceID:
		f.SourceID = v
	case fieldDestination:
		f.Destination = v
	case fieldTypeTag:
		f.TypeTag = v
	case fieldSession:
		f.Session = v
	case fieldAckSession:
		f.AckSession = v
	case fieldNode:
		f.Node = v
	case fieldCompression:
		f.Compression = v
	case fieldKindName:
		f.KindName = v
	case fieldError:
		f.Error = v
	}
}

func sizeVarint(num protowire.Number, v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

func sizeString(num protowire.Number, v string) int {
	if v == "" {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(len(v))
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
