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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	"github.com/tochemey/netactor/address"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/log"
)

type sendFunc func(ctx context.Context, from, to address.ActorRef, msg any) error

// scheduler runs delayed and periodic sends on a quartz scheduler
type scheduler struct {
	mu sync.Mutex

	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	logger          log.Logger
	stopTimeout     time.Duration
	send            sendFunc
}

func newScheduler(logger log.Logger, stopTimeout time.Duration, send sendFunc) *scheduler {
	quartzScheduler, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          logger,
		stopTimeout:     stopTimeout,
		send:            send,
	}
}

func (x *scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.quartzScheduler.Start(ctx)
	x.started.Store(x.quartzScheduler.IsStarted())
	x.logger.Debug("messages scheduler started")
}

func (x *scheduler) Stop(ctx context.Context) {
	if !x.started.Load() {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.started.Store(x.quartzScheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
	x.logger.Debug("messages scheduler stopped")
}

// ScheduleOnce sends msg to to once, after delay
func (x *scheduler) ScheduleOnce(msg any, to address.ActorRef, delay time.Duration) (string, error) {
	return x.schedule(msg, to, quartz.NewRunOnceTrigger(delay))
}

// Schedule sends msg to to every interval until canceled
func (x *scheduler) Schedule(msg any, to address.ActorRef, interval time.Duration) (string, error) {
	return x.schedule(msg, to, quartz.NewSimpleTrigger(interval))
}

// Cancel removes a scheduled send
func (x *scheduler) Cancel(key string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return gerrors.ErrSchedulerNotStarted
	}

	if err := x.quartzScheduler.DeleteJob(quartz.NewJobKey(key)); err != nil {
		if errors.Is(err, quartz.ErrJobNotFound) {
			return fmt.Errorf("%w: %s", gerrors.ErrScheduleNotFound, key)
		}
		return err
	}
	return nil
}

func (x *scheduler) schedule(msg any, to address.ActorRef, trigger quartz.Trigger) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.started.Load() {
		return "", gerrors.ErrSchedulerNotStarted
	}

	if err := to.Validate(); err != nil {
		return "", err
	}

	job := job.NewFunctionJob[bool](
		func(ctx context.Context) (bool, error) {
			err := x.send(ctx, address.NoSender(), to, msg)
			if err != nil {
				x.logger.Warnf("scheduled send to %s failed: %v", to, err)
			}
			return err == nil, err
		},
	)

	key := newJobKey()
	detail := quartz.NewJobDetail(job, quartz.NewJobKey(key))
	if err := x.quartzScheduler.ScheduleJob(detail, trigger); err != nil {
		return "", err
	}
	return key, nil
}

func newJobKey() string {
	return uuid.NewString()
}

// ScheduleOnce sends msg to to once, after delay. The returned key cancels
// the send.
func (env *Environment) ScheduleOnce(_ context.Context, msg any, to address.ActorRef, delay time.Duration) (string, error) {
	if !env.started.Load() {
		return "", gerrors.ErrEnvironmentNotStarted
	}
	return env.scheduler.ScheduleOnce(msg, to, delay)
}

// Schedule sends msg to to every interval until CancelSchedule is called
// with the returned key
func (env *Environment) Schedule(_ context.Context, msg any, to address.ActorRef, interval time.Duration) (string, error) {
	if !env.started.Load() {
		return "", gerrors.ErrEnvironmentNotStarted
	}
	return env.scheduler.Schedule(msg, to, interval)
}

// CancelSchedule cancels a scheduled send
func (env *Environment) CancelSchedule(key string) error {
	if !env.started.Load() {
		return gerrors.ErrEnvironmentNotStarted
	}
	return env.scheduler.Cancel(key)
}
