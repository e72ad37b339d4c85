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

package wire

// Kind identifies the purpose of a frame
type Kind uint8

const (
	// KindUnknown is the zero Kind and never valid on the wire
	KindUnknown Kind = iota
	// KindHandshake opens every connection and carries the peer identity
	KindHandshake
	// KindData carries an application message for one actor
	KindData
	// KindHeartbeatRequest probes the peer
	KindHeartbeatRequest
	// KindHeartbeatReply answers a heartbeat request
	KindHeartbeatReply
	// KindAck acknowledges every sequenced frame up to Ack
	KindAck
	// KindSpawn asks the peer to spawn a registered kind
	KindSpawn
	// KindStop asks the peer to stop one of its actors
	KindStop
	// KindBroadcast delivers a message to every actor of the peer
	KindBroadcast
	// KindExpire expires the peer environment
	KindExpire
	// KindGoodbye announces an orderly close
	KindGoodbye
	// KindQuery asks the peer whether it hosts a named actor
	KindQuery
	// KindQueryResult answers a query
	KindQueryResult
)

// Sequenced reports whether frames of this kind take a sequence number and
// are subject to acknowledgement, retransmission and duplicate detection.
func (k Kind) Sequenced() bool {
	switch k {
	case KindData, KindSpawn, KindStop, KindBroadcast, KindExpire, KindQuery, KindQueryResult:
		return true
	default:
		return false
	}
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k > KindUnknown && k <= KindQueryResult
}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindData:
		return "data"
	case KindHeartbeatRequest:
		return "heartbeat-request"
	case KindHeartbeatReply:
		return "heartbeat-reply"
	case KindAck:
		return "ack"
	case KindSpawn:
		return "spawn"
	case KindStop:
		return "stop"
	case KindBroadcast:
		return "broadcast"
	case KindExpire:
		return "expire"
	case KindGoodbye:
		return "goodbye"
	case KindQuery:
		return "query"
	case KindQueryResult:
		return "query-result"
	default:
		return "unknown"
	}
}
