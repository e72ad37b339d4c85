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

// Serializer turns a message into bytes for a peer and back.
//
// The remoting layer stores the codec name and the type name in the frame
// type tag as "<codec>:<type name>", so the receiving environment picks the
// same Serializer by codec and the serializer resolves the concrete type by
// name. Deserialize must return a value with the dynamic type that was given
// to Serialize since behaviors dispatch on it with a type switch.
//
// Implementations must be safe for concurrent use.
type Serializer interface {
	// Codec returns the codec name used as the type tag prefix. It must not
	// contain a colon.
	Codec() string
	// Serialize encodes message and returns its type name and bytes
	Serialize(message any) (typeName string, data []byte, err error)
	// Deserialize decodes data into a fresh value of the named type
	Deserialize(typeName string, data []byte) (any, error)
}
