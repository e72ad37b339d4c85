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

// ConnectionMetric groups the instruments describing peer traffic.
// Each observation carries a peer attribute.
type ConnectionMetric struct {
	framesSent          metric.Int64ObservableCounter
	framesReceived      metric.Int64ObservableCounter
	framesRetransmitted metric.Int64ObservableCounter
	duplicatesDiscarded metric.Int64ObservableCounter
	sequenceGaps        metric.Int64ObservableCounter
}

// NewConnectionMetric creates the connection instruments
func NewConnectionMetric(meter metric.Meter) (*ConnectionMetric, error) {
	var instruments ConnectionMetric
	var err error

	if instruments.framesSent, err = meter.Int64ObservableCounter(
		"connection.frames.sent",
		metric.WithDescription("Total number of frames written to a peer"),
	); err != nil {
		return nil, err
	}

	if instruments.framesReceived, err = meter.Int64ObservableCounter(
		"connection.frames.received",
		metric.WithDescription("Total number of frames read from a peer"),
	); err != nil {
		return nil, err
	}

	if instruments.framesRetransmitted, err = meter.Int64ObservableCounter(
		"connection.frames.retransmitted",
		metric.WithDescription("Total number of frames written again after a reconnect"),
	); err != nil {
		return nil, err
	}

	if instruments.duplicatesDiscarded, err = meter.Int64ObservableCounter(
		"connection.frames.duplicates",
		metric.WithDescription("Total number of duplicate frames discarded"),
	); err != nil {
		return nil, err
	}

	if instruments.sequenceGaps, err = meter.Int64ObservableCounter(
		"connection.sequence.gaps",
		metric.WithDescription("Total number of sequence gaps detected"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// FramesSent returns the sent frames counter
func (x *ConnectionMetric) FramesSent() metric.Int64ObservableCounter {
	return x.framesSent
}

// FramesReceived returns the received frames counter
func (x *ConnectionMetric) FramesReceived() metric.Int64ObservableCounter {
	return x.framesReceived
}

// FramesRetransmitted returns the retransmitted frames counter
func (x *ConnectionMetric) FramesRetransmitted() metric.Int64ObservableCounter {
	return x.framesRetransmitted
}

// DuplicatesDiscarded returns the discarded duplicates counter
func (x *ConnectionMetric) DuplicatesDiscarded() metric.Int64ObservableCounter {
	return x.duplicatesDiscarded
}

// SequenceGaps returns the sequence gaps counter
func (x *ConnectionMetric) SequenceGaps() metric.Int64ObservableCounter {
	return x.sequenceGaps
}

// Instruments returns every instrument for callback registration
func (x *ConnectionMetric) Instruments() []metric.Observable {
	return []metric.Observable{
		x.framesSent,
		x.framesReceived,
		x.framesRetransmitted,
		x.duplicatesDiscarded,
		x.sequenceGaps,
	}
}
