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
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/tochemey/netactor/internal/types"
)

// typesRegistry resolves CBOR type names on the receive path. Types passed to
// WithSerializers with a CBORSerializer are registered automatically;
// receive-only types are registered with RegisterSerializableTypes.
var typesRegistry = types.NewRegistry()

// CBOR serializer errors.
var (
	// ErrCBORNilMessage is returned when the message is nil
	ErrCBORNilMessage = errors.New("remote: CBOR message is nil")
	// ErrCBORSerializeFailed wraps a CBOR marshal failure
	ErrCBORSerializeFailed = errors.New("remote: failed to serialize CBOR message")
	// ErrCBORDeserializeFailed wraps a CBOR unmarshal failure
	ErrCBORDeserializeFailed = errors.New("remote: failed to deserialize CBOR message")
	// ErrCBORTypeNotRegistered is returned for a type missing from the registry
	ErrCBORTypeNotRegistered = errors.New("remote: CBOR type not registered")

	cborEncOpts = cbor.EncOptions{
		Sort:        cbor.SortNone,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnixDynamic,
	}
	cborDecOpts = cbor.DecOptions{
		MaxNestedLevels: 64,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8DecodeInvalid,
	}
)

// CBORCodec is the type tag prefix of CBOR payloads
const CBORCodec = "cbor"

// CBORSerializer encodes plain Go values with CBOR. The type name is the
// lower-cased reflect name of the value, e.g. "main.greet".
//
// A value sent as a pointer is received as a pointer, a value sent by value
// is received by value.
type CBORSerializer struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

var _ Serializer = (*CBORSerializer)(nil)

// NewCBORSerializer returns a CBORSerializer bound to the package registry
func NewCBORSerializer() *CBORSerializer {
	encMode, _ := cborEncOpts.EncMode()
	decMode, _ := cborDecOpts.DecMode()
	return &CBORSerializer{encMode: encMode, decMode: decMode}
}

// RegisterSerializableTypes registers Go types for CBOR decoding. Pass a
// value, or a pointer to a value, of each type.
func RegisterSerializableTypes(values ...any) {
	for _, v := range values {
		typesRegistry.Register(v)
	}
}

// registryRequired marks serializers whose message types must be registered
func (s *CBORSerializer) registryRequired() {}

// Codec implements Serializer
func (s *CBORSerializer) Codec() string {
	return CBORCodec
}

// Serialize implements Serializer. Pointer values are tagged with a leading
// "*" so that they are decoded as pointers.
func (s *CBORSerializer) Serialize(message any) (string, []byte, error) {
	typ := reflect.TypeOf(message)
	if typ == nil {
		return "", nil, ErrCBORNilMessage
	}

	prefix := ""
	if typ.Kind() == reflect.Ptr {
		if reflect.ValueOf(message).IsNil() {
			return "", nil, ErrCBORNilMessage
		}
		prefix = "*"
	}

	name := types.TypeName(typ)
	if _, ok := typesRegistry.TypeOf(name); !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrCBORTypeNotRegistered, name)
	}

	data, err := s.encMode.Marshal(message)
	if err != nil {
		return "", nil, errors.Join(ErrCBORSerializeFailed, err)
	}
	return prefix + name, data, nil
}

// Deserialize implements Serializer
func (s *CBORSerializer) Deserialize(typeName string, data []byte) (any, error) {
	pointer := len(typeName) > 0 && typeName[0] == '*'
	if pointer {
		typeName = typeName[1:]
	}

	elemType, ok := typesRegistry.TypeOf(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCBORTypeNotRegistered, typeName)
	}

	ptr := reflect.New(elemType)
	if err := s.decMode.Unmarshal(data, ptr.Interface()); err != nil {
		return nil, errors.Join(ErrCBORDeserializeFailed, err)
	}

	if pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}
