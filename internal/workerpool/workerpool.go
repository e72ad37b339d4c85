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

// Package workerpool runs submitted tasks on a fixed set of goroutines fed by
// a shared run queue.
package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	"github.com/tochemey/netactor/log"
)

// ErrPoolStopped is returned when a task is submitted to a stopped pool
var ErrPoolStopped = errors.New("worker pool is stopped")

// ErrPoolNotStarted is returned when a task is submitted before Start
var ErrPoolNotStarted = errors.New("worker pool must be started first")

// Task is a unit of work run by one worker
type Task func()

// WorkerPool is a fixed size pool of goroutines draining a shared run queue.
// Tasks run in submission order across the pool but may complete in any
// order.
type WorkerPool struct {
	workers int
	logger  log.Logger
	tasks   *queue.Queue
	wg      sync.WaitGroup
	mu      sync.Mutex

	started *atomic.Bool
	stopped *atomic.Bool
	running *atomic.Int64
	done    *atomic.Uint64
}

// New creates a WorkerPool. The default number of workers is GOMAXPROCS.
func New(opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.DiscardLogger,
		started: atomic.NewBool(false),
		stopped: atomic.NewBool(false),
		running: atomic.NewInt64(0),
		done:    atomic.NewUint64(0),
	}

	for _, opt := range opts {
		opt.Apply(pool)
	}
	return pool
}

// Start spawns the workers. Calling Start more than once is a no-op.
func (pool *WorkerPool) Start() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if pool.started.Load() {
		return
	}

	pool.tasks = queue.New(int64(pool.workers))
	pool.wg.Add(pool.workers)
	for i := 0; i < pool.workers; i++ {
		go pool.work(pool.tasks)
	}
	pool.started.Store(true)
}

// Submit enqueues a task. It never blocks.
func (pool *WorkerPool) Submit(task Task) error {
	if !pool.started.Load() {
		return ErrPoolNotStarted
	}
	if pool.stopped.Load() {
		return ErrPoolStopped
	}
	if err := pool.tasks.Put(task); err != nil {
		return ErrPoolStopped
	}
	return nil
}

// Stop disposes the run queue and waits for the running tasks to return.
// Queued tasks that have not started are dropped.
func (pool *WorkerPool) Stop() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if !pool.started.Load() || pool.stopped.Swap(true) {
		return
	}
	dropped := pool.tasks.Dispose()
	if len(dropped) > 0 {
		pool.logger.Debugf("worker pool dropped %d queued tasks", len(dropped))
	}
	pool.wg.Wait()
}

// Workers returns the number of workers
func (pool *WorkerPool) Workers() int {
	return pool.workers
}

// Running returns the number of tasks currently executing
func (pool *WorkerPool) Running() int64 {
	return pool.running.Load()
}

// Completed returns the number of tasks that have finished
func (pool *WorkerPool) Completed() uint64 {
	return pool.done.Load()
}

// Pending returns the number of tasks waiting for a worker
func (pool *WorkerPool) Pending() int64 {
	if !pool.started.Load() || pool.stopped.Load() {
		return 0
	}
	return pool.tasks.Len()
}

func (pool *WorkerPool) work(tasks *queue.Queue) {
	defer pool.wg.Done()
	for {
		items, err := tasks.Get(1)
		if err != nil {
			return
		}
		for _, item := range items {
			if task, ok := item.(Task); ok {
				pool.run(task)
			}
		}
	}
}

func (pool *WorkerPool) run(task Task) {
	pool.running.Inc()
	defer func() {
		pool.running.Dec()
		pool.done.Inc()
		if r := recover(); r != nil {
			pool.logger.Error(fmt.Errorf("worker pool task panicked: %v", r))
		}
	}()
	task()
}
