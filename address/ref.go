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

package address

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/validation"
)

const (
	scheme       = "netactor"
	schemePrefix = scheme + "://"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9\-_\.]*$`)

// ActorID identifies an actor within the Environment that issued it.
type ActorID string

// String returns the id as a plain string
func (id ActorID) String() string {
	return string(id)
}

// ValidateName checks a user supplied actor id. User ids start with a letter,
// which keeps them apart from the decimal ids an Environment issues itself.
func ValidateName(id ActorID) error {
	err := validation.New(validation.FailFast()).
		AddAssertion(len(id) <= 255, "actor id is too long. Maximum length is 255").
		AddValidator(validation.NewPatternValidator(namePattern, string(id), nil)).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidActorID, err)
	}
	return nil
}

// ActorRef is a tagged reference to an actor, either Local or Remote.
// It is a plain value: comparable, safe to copy and to use as a map key.
// Holding an ActorRef does not keep the actor alive.
type ActorRef struct {
	id     ActorID
	node   Node
	remote bool
}

// Local returns a reference resolved by the Environment that issued id
func Local(id ActorID) ActorRef {
	return ActorRef{id: id}
}

// Remote returns a reference to the actor id hosted on node
func Remote(node Node, id ActorID) ActorRef {
	return ActorRef{id: id, node: node, remote: true}
}

// NoSender returns the reference used when a message has no sender
func NoSender() ActorRef {
	return ActorRef{}
}

// ID returns the actor id
func (r ActorRef) ID() ActorID {
	return r.id
}

// Node returns the hosting node of a Remote reference and the zero Node otherwise
func (r ActorRef) Node() Node {
	return r.node
}

// IsLocal reports whether r is a Local reference
func (r ActorRef) IsLocal() bool {
	return !r.remote && r.id != ""
}

// IsRemote reports whether r is a Remote reference
func (r ActorRef) IsRemote() bool {
	return r.remote
}

// IsZero reports whether r is NoSender
func (r ActorRef) IsZero() bool {
	return r.id == "" && !r.remote
}

// Equals reports whether both references carry the same tag, node and id
func (r ActorRef) Equals(other ActorRef) bool {
	return r == other
}

// String returns the canonical form of the reference
func (r ActorRef) String() string {
	switch {
	case r.IsZero():
		return ""
	case r.remote:
		return schemePrefix + r.node.String() + "/" + string(r.id)
	default:
		return schemePrefix + "/" + string(r.id)
	}
}

// Validate checks that r addresses an actor
func (r ActorRef) Validate() error {
	if r.id == "" || strings.ContainsAny(string(r.id), "/ \t\n") {
		return errors.ErrInvalidActorRef
	}

	if r.remote {
		if err := r.node.Validate(); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidActorRef, err)
		}
	}
	return nil
}

// ParseActorRef parses the canonical form produced by String.
func ParseActorRef(s string) (ActorRef, error) {
	rest, ok := strings.CutPrefix(s, schemePrefix)
	if !ok {
		return ActorRef{}, fmt.Errorf("%w: unsupported scheme in %q", errors.ErrInvalidActorRef, s)
	}

	authority, id, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		return ActorRef{}, fmt.Errorf("%w: missing actor id in %q", errors.ErrInvalidActorRef, s)
	}

	var ref ActorRef
	if authority == "" {
		ref = Local(ActorID(id))
	} else {
		node, err := ParseNode(authority)
		if err != nil {
			return ActorRef{}, fmt.Errorf("%w: %v", errors.ErrInvalidActorRef, err)
		}
		ref = Remote(node, ActorID(id))
	}

	if err := ref.Validate(); err != nil {
		return ActorRef{}, err
	}
	return ref, nil
}
