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

// Package address defines how nodes and actors are addressed.
//
// A Node is the listening endpoint of an Environment. An ActorRef is a
// location-transparent, non-owning reference to an actor: either Local to the
// Environment that issued it or Remote, pinned to the node hosting the actor.
//
// Canonical textual forms:
//
//	netactor:///<id>                  local reference
//	netactor://<host>:<port>/<id>     remote reference
package address

import (
	"fmt"
	"net"
	"strconv"

	"github.com/tochemey/netactor/internal/validation"
)

// Node identifies the listening endpoint of an Environment.
// The zero value means "no node".
type Node struct {
	host string
	port int
}

var _ validation.Validator = Node{}

// NewNode creates a Node. It does not validate its input.
func NewNode(host string, port int) Node {
	return Node{host: host, port: port}
}

// ParseNode parses a "host:port" string.
func ParseNode(hostPort string) (Node, error) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Node{}, fmt.Errorf("invalid node address %q: %w", hostPort, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Node{}, fmt.Errorf("invalid node port %q: %w", hostPort, err)
	}

	node := NewNode(host, port)
	if err := node.Validate(); err != nil {
		return Node{}, err
	}
	return node, nil
}

// Host returns the host part
func (n Node) Host() string {
	return n.host
}

// Port returns the port part
func (n Node) Port() int {
	return n.port
}

// IsZero reports whether n is the zero Node
func (n Node) IsZero() bool {
	return n.host == "" && n.port == 0
}

// Equals reports whether both nodes designate the same endpoint
func (n Node) Equals(other Node) bool {
	return n.host == other.host && n.port == other.port
}

// Less orders nodes by their canonical string. Both ends of a link
// compute the same order, which is what the connection tie-break relies on.
func (n Node) Less(other Node) bool {
	return n.String() < other.String()
}

// String returns "host:port"
func (n Node) String() string {
	if n.IsZero() {
		return ""
	}
	return net.JoinHostPort(n.host, strconv.Itoa(n.port))
}

// Validate checks that the node is a dialable TCP endpoint
func (n Node) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("host", n.host)).
		AddValidator(validation.NewTCPAddressValidator(n.String())).
		AddAssertion(n.port > 0, "node port must be greater than zero").
		Validate()
}
