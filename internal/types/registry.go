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

package types

import (
	"reflect"
	"strings"
	"sync"
)

// Registry maps wire type names to Go types so that self-describing payloads
// can be decoded back into their concrete type.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Register records the type of v. v can be a pointer to a value of the type,
// a plain value, or a reflect.Type.
func (r *Registry) Register(v any) {
	rtype := reflectType(v)
	if rtype == nil {
		return
	}
	r.mu.Lock()
	r.types[lowTrim(rtype.String())] = rtype
	r.mu.Unlock()
}

// Deregister removes the type of v
func (r *Registry) Deregister(v any) {
	r.mu.Lock()
	delete(r.types, TypeName(v))
	r.mu.Unlock()
}

// Exists reports whether the type of v is known
func (r *Registry) Exists(v any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[TypeName(v)]
	return ok
}

// TypeOf returns the type registered under name
func (r *Registry) TypeOf(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out, ok := r.types[lowTrim(name)]
	return out, ok
}

// Len returns the number of registered types
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// TypeName returns the wire name of the type of v
func TypeName(v any) string {
	rtype := reflectType(v)
	if rtype == nil {
		return ""
	}
	return lowTrim(rtype.String())
}

// reflectType returns the underlying non pointer type of v
func reflectType(v any) reflect.Type {
	var rtype reflect.Type
	switch x := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		rtype = x
	default:
		rtype = reflect.TypeOf(v)
	}
	for rtype.Kind() == reflect.Ptr {
		rtype = rtype.Elem()
	}
	return rtype
}

func lowTrim(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
