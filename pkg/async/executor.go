package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Executor schedules a named task. Implementations decide whether the task
// runs concurrently with the caller.
type Executor interface {
	Go(ctx context.Context, taskName string, fn func(context.Context) error)
}

// GoroutineExecutor runs tasks in goroutines with panic recovery, a
// per-task timeout, and error logging.
//
// The task context is detached from the caller's: values survive but
// cancellation does not, so finishing an HTTP request never aborts the
// background work it triggered.
type GoroutineExecutor struct {
	timeout time.Duration
	log     *logrus.Logger
	wg      sync.WaitGroup
}

// NewGoroutineExecutor creates the production executor.
func NewGoroutineExecutor(timeout time.Duration, log *logrus.Logger) *GoroutineExecutor {
	if log == nil {
		log = logrus.New()
	}
	return &GoroutineExecutor{timeout: timeout, log: log}
}

// Go runs fn in a goroutine. Panics and errors are logged, never re-raised.
func (e *GoroutineExecutor) Go(ctx context.Context, taskName string, fn func(context.Context) error) {
	detached := detachCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		taskCtx, cancel := context.WithTimeout(detached, e.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				e.log.WithFields(logrus.Fields{
					"task":  taskName,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("panic in background task")
			}
		}()

		if err := fn(taskCtx); err != nil {
			e.log.WithField("task", taskName).WithError(err).Warn("background task failed")
		}
	}()
}

// Wait blocks until every scheduled task has finished. Used at shutdown.
func (e *GoroutineExecutor) Wait() {
	e.wg.Wait()
}

// SyncExecutor runs tasks inline on the caller's goroutine. For tests.
type SyncExecutor struct {
	// Errs collects the error of every executed task, nil included.
	Errs []error
}

// Go runs fn immediately and records its result.
func (e *SyncExecutor) Go(ctx context.Context, taskName string, fn func(context.Context) error) {
	e.Errs = append(e.Errs, fn(ctx))
}

// detachedContext carries values from its parent but no deadline or
// cancellation.
type detachedContext struct {
	parent context.Context
}

func detachCancel(ctx context.Context) context.Context {
	return detachedContext{parent: ctx}
}

func (d detachedContext) Deadline() (time.Time, bool)       { return time.Time{}, false }
func (d detachedContext) Done() <-chan struct{}             { return nil }
func (d detachedContext) Err() error                        { return nil }
func (d detachedContext) Value(key interface{}) interface{} { return d.parent.Value(key) }
