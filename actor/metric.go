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

package actor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	imetric "github.com/tochemey/netactor/internal/metric"
)

// registerMetrics registers the observable instruments of the Environment
// and of its connections
func (env *Environment) registerMetrics() error {
	meter := imetric.NewProvider(env.meterProvider).Meter()

	envMetric, err := imetric.NewEnvironmentMetric(meter)
	if err != nil {
		return err
	}

	connMetric, err := imetric.NewConnectionMetric(meter)
	if err != nil {
		return err
	}

	instruments := append(envMetric.Instruments(), connMetric.Instruments()...)
	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		observer.ObserveInt64(envMetric.ActorsCount(), int64(env.registry.Len()))
		observer.ObserveInt64(envMetric.DeadlettersCount(), int64(env.deadletters.Load()))
		observer.ObserveInt64(envMetric.FailuresCount(), int64(env.failures.Load()))
		observer.ObserveInt64(envMetric.ProcessedCount(), int64(env.processed.Load()))

		var peers int64
		for _, conn := range env.Connections() {
			if conn.State == ConnectionEstablished || conn.State == ConnectionDegraded {
				peers++
			}

			attrs := metric.WithAttributes(attribute.String("peer", conn.Node.String()))
			observer.ObserveInt64(connMetric.FramesSent(), int64(conn.FramesSent), attrs)
			observer.ObserveInt64(connMetric.FramesReceived(), int64(conn.FramesReceived), attrs)
			observer.ObserveInt64(connMetric.FramesRetransmitted(), int64(conn.FramesRetransmitted), attrs)
			observer.ObserveInt64(connMetric.DuplicatesDiscarded(), int64(conn.DuplicatesDiscarded), attrs)
			observer.ObserveInt64(connMetric.SequenceGaps(), int64(conn.SequenceGaps), attrs)
		}
		observer.ObserveInt64(envMetric.PeersCount(), peers)
		return nil
	}, instruments...)
	if err != nil {
		return err
	}

	env.metrics = registration
	return nil
}
