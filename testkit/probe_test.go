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
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type note struct {
	Text string
}

func TestProbe(t *testing.T) {
	t.Run("Assert message received", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessage(wrapperspb.String("pong"))
		probe.ExpectNoMessage()
	})

	t.Run("Assert plain values", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, note{Text: "hello"})
		probe.ExpectMessage(note{Text: "hello"})
	})

	t.Run("Assert any message received", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, wrapperspb.Int64(42))
		msg := probe.ExpectAnyMessage()
		assert.Equal(t, int64(42), msg.(*wrapperspb.Int64Value).GetValue())
	})

	t.Run("Assert sender", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessage(wrapperspb.String("pong"))
		assert.True(t, probe.Sender().Equals(ref))
	})

	t.Run("Assert message type", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessageOfType(reflect.TypeOf(&wrapperspb.StringValue{}))
	})

	t.Run("Assert message received within a time period", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)

		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessageWithin(time.Second, wrapperspb.String("pong"))

		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessageOfTypeWithin(time.Second, reflect.TypeOf(&wrapperspb.StringValue{}))

		probe.Send(ref, wrapperspb.Bool(true))
		assert.NotNil(t, probe.ExpectAnyMessageWithin(time.Second))
	})
}
