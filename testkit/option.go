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

package testkit

import (
	"os"

	"github.com/tochemey/netactor/actor"
	"github.com/tochemey/netactor/log"
)

// Option is the interface that applies a TestKit option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(kit *TestKit)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(kit *TestKit)

// Apply implements Option
func (f OptionFunc) Apply(kit *TestKit) {
	f(kit)
}

// WithLogging sets the TestKit logger
func WithLogging(level log.Level) Option {
	return OptionFunc(func(kit *TestKit) {
		kit.logger = log.NewZap(level, os.Stderr)
	})
}

// WithEnvironmentOptions passes extra options to the underlying Environment
func WithEnvironmentOptions(opts ...actor.Option) Option {
	return OptionFunc(func(kit *TestKit) {
		kit.envOpts = append(kit.envOpts, opts...)
	})
}
