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

package metric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type failingMeter struct {
	metric.Meter
	failures map[string]error
}

func (m failingMeter) Int64ObservableCounter(name string, opts ...metric.Int64ObservableCounterOption) (metric.Int64ObservableCounter, error) {
	if err, ok := m.failures[name]; ok {
		return nil, err
	}
	return m.Meter.Int64ObservableCounter(name, opts...)
}

func TestProvider(t *testing.T) {
	provider := NewProvider(noop.NewMeterProvider())
	require.NotNil(t, provider.Meter())

	global := NewProvider(nil)
	require.NotNil(t, global.Meter())
}

func TestEnvironmentMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	instruments, err := NewEnvironmentMetric(meter)
	require.NoError(t, err)

	assert.NotNil(t, instruments.ActorsCount())
	assert.NotNil(t, instruments.DeadlettersCount())
	assert.NotNil(t, instruments.FailuresCount())
	assert.NotNil(t, instruments.ProcessedCount())
	assert.NotNil(t, instruments.PeersCount())
	assert.Len(t, instruments.Instruments(), 5)

	for _, name := range []string{
		"environment.actors.count",
		"environment.deadletters.count",
		"environment.failures.count",
		"environment.processed.count",
		"environment.peers.count",
	} {
		t.Run(name, func(t *testing.T) {
			instruments, err := NewEnvironmentMetric(failingMeter{
				Meter:    meter,
				failures: map[string]error{name: errors.New("boom")},
			})
			require.Error(t, err)
			require.Nil(t, instruments)
		})
	}
}

func TestConnectionMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	instruments, err := NewConnectionMetric(meter)
	require.NoError(t, err)

	assert.NotNil(t, instruments.FramesSent())
	assert.NotNil(t, instruments.FramesReceived())
	assert.NotNil(t, instruments.FramesRetransmitted())
	assert.NotNil(t, instruments.DuplicatesDiscarded())
	assert.NotNil(t, instruments.SequenceGaps())
	assert.Len(t, instruments.Instruments(), 5)

	for _, name := range []string{
		"connection.frames.sent",
		"connection.frames.received",
		"connection.frames.retransmitted",
		"connection.frames.duplicates",
		"connection.sequence.gaps",
	} {
		t.Run(name, func(t *testing.T) {
			instruments, err := NewConnectionMetric(failingMeter{
				Meter:    meter,
				failures: map[string]error{name: errors.New("boom")},
			})
			require.Error(t, err)
			require.Nil(t, instruments)
		})
	}
}
