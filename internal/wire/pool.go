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

import "sync"

const (
	minBucketShift = 8  // 256 B
	maxBucketShift = 22 // 4 MiB
	numBuckets     = maxBucketShift - minBucketShift + 1
)

// framePool keeps read buffers bucketed by power-of-two size. Decode copies
// everything it keeps, so a buffer goes back to the pool right after use.
type framePool struct {
	pools [numBuckets]sync.Pool
}

func newFramePool() *framePool {
	pool := &framePool{}
	for i := range pool.pools {
		size := 1 << (minBucketShift + i)
		pool.pools[i] = sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		}
	}
	return pool
}

var buffers = newFramePool()

// get returns a buffer of exactly n bytes. Oversized requests are allocated.
func (x *framePool) get(n int) []byte {
	idx := bucketIndex(n)
	if idx >= numBuckets {
		return make([]byte, n)
	}
	bp := x.pools[idx].Get().(*[]byte)
	return (*bp)[:n]
}

// put returns a buffer to its bucket. Buffers that match no bucket are dropped.
func (x *framePool) put(buf []byte) {
	c := cap(buf)
	idx := bucketIndexExact(c)
	if idx < 0 {
		return
	}
	buf = buf[:c]
	x.pools[idx].Put(&buf)
}

func bucketIndex(n int) int {
	if n <= 1<<minBucketShift {
		return 0
	}
	shift := 0
	v := n - 1
	for v > 0 {
		v >>= 1
		shift++
	}
	idx := shift - minBucketShift
	if idx >= numBuckets {
		return numBuckets
	}
	return idx
}

func bucketIndexExact(c int) int {
	if c == 0 || c&(c-1) != 0 {
		return -1
	}
	shift := 0
	v := c
	for v > 1 {
		v >>= 1
		shift++
	}
	idx := shift - minBucketShift
	if idx < 0 || idx >= numBuckets {
		return -1
	}
	return idx
}
