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

import "go.opentelemetry.io/otel/metric"

// EnvironmentMetric groups the node level instruments.
//
// Instruments:
//   - environment.actors.count      (Int64ObservableCounter)
//   - environment.deadletters.count (Int64ObservableCounter)
//   - environment.failures.count    (Int64ObservableCounter)
//   - environment.processed.count   (Int64ObservableCounter)
//   - environment.peers.count       (Int64ObservableCounter)
type EnvironmentMetric struct {
	actorsCount      metric.Int64ObservableCounter
	deadlettersCount metric.Int64ObservableCounter
	failuresCount    metric.Int64ObservableCounter
	processedCount   metric.Int64ObservableCounter
	peersCount       metric.Int64ObservableCounter
}

// NewEnvironmentMetric creates the node level instruments
func NewEnvironmentMetric(meter metric.Meter) (*EnvironmentMetric, error) {
	var instruments EnvironmentMetric
	var err error

	if instruments.actorsCount, err = meter.Int64ObservableCounter(
		"environment.actors.count",
		metric.WithDescription("Total number of active actors on the node"),
	); err != nil {
		return nil, err
	}

	if instruments.deadlettersCount, err = meter.Int64ObservableCounter(
		"environment.deadletters.count",
		metric.WithDescription("Total number of undeliverable messages"),
	); err != nil {
		return nil, err
	}

	if instruments.failuresCount, err = meter.Int64ObservableCounter(
		"environment.failures.count",
		metric.WithDescription("Total number of isolated actor failures"),
	); err != nil {
		return nil, err
	}

	if instruments.processedCount, err = meter.Int64ObservableCounter(
		"environment.processed.count",
		metric.WithDescription("Total number of messages handled by actors"),
	); err != nil {
		return nil, err
	}

	if instruments.peersCount, err = meter.Int64ObservableCounter(
		"environment.peers.count",
		metric.WithDescription("Total number of established peer connections"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// ActorsCount returns the counter of active actors
func (x *EnvironmentMetric) ActorsCount() metric.Int64ObservableCounter {
	return x.actorsCount
}

// DeadlettersCount returns the counter of undeliverable messages
func (x *EnvironmentMetric) DeadlettersCount() metric.Int64ObservableCounter {
	return x.deadlettersCount
}

// FailuresCount returns the counter of actor failures
func (x *EnvironmentMetric) FailuresCount() metric.Int64ObservableCounter {
	return x.failuresCount
}

// ProcessedCount returns the counter of handled messages
func (x *EnvironmentMetric) ProcessedCount() metric.Int64ObservableCounter {
	return x.processedCount
}

// PeersCount returns the counter of established connections
func (x *EnvironmentMetric) PeersCount() metric.Int64ObservableCounter {
	return x.peersCount
}

// Instruments returns every instrument for callback registration
func (x *EnvironmentMetric) Instruments() []metric.Observable {
	return []metric.Observable{
		x.actorsCount,
		x.deadlettersCount,
		x.failuresCount,
		x.processedCount,
		x.peersCount,
	}
}
