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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tochemey/netactor/actor"
	"github.com/tochemey/netactor/log"
)

// pinger replies pong to ping and echoes anything else
type pinger struct{}

func (p *pinger) OnStart(*actor.Context) error { return nil }

func (p *pinger) OnMessage(ctx *actor.ReceiveContext) error {
	if msg, ok := ctx.Message().(*wrapperspb.StringValue); ok && msg.GetValue() == "ping" {
		return ctx.Reply(wrapperspb.String("pong"))
	}
	return ctx.Reply(ctx.Message())
}

func (p *pinger) OnStop(*actor.Context) error { return nil }

func newTestKit(t *testing.T, opts ...Option) (*TestKit, context.Context) {
	ctx := context.Background()
	kit := New(ctx, t, opts...)
	t.Cleanup(func() {
		kit.Shutdown(ctx)
	})
	return kit, ctx
}

func TestTestKit(t *testing.T) {
	t.Run("Environment", func(t *testing.T) {
		kit, _ := newTestKit(t)
		require.NotNil(t, kit.Environment())
		require.Empty(t, kit.Environment().ListActive())
	})

	t.Run("Spawn", func(t *testing.T) {
		kit, ctx := newTestKit(t)

		ref := kit.Spawn(ctx, &pinger{}, actor.WithActorID("pinger"))
		found, ok := kit.Environment().Lookup("pinger")
		require.True(t, ok)
		require.True(t, ref.Equals(found))
	})

	t.Run("NewProbe", func(t *testing.T) {
		kit, ctx := newTestKit(t, WithLogging(log.ErrorLevel))

		ref := kit.Spawn(ctx, &pinger{})
		probe := kit.NewProbe(ctx)
		probe.Send(ref, wrapperspb.String("ping"))
		probe.ExpectMessage(wrapperspb.String("pong"))
		probe.ExpectNoMessage()
		probe.Stop()
	})

	t.Run("Shutdown is idempotent", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		ctx := context.Background()
		kit := New(ctx, t)
		kit.Shutdown(ctx)
		kit.Shutdown(ctx)
	})
}
