package navigation

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/go-drift/navstack/pkg/errors"
	"github.com/go-drift/navstack/pkg/looper"
)

// ErrQueueClosed is returned by Flush once the queue's owner is torn down.
var ErrQueueClosed = stderrors.New("navigation: action queue closed")

// Operation is one queued unit of navigation work.
//
// Run performs a logically atomic action and returns how long its visual
// effect needs before the next operation may start (0 if none). Run must
// leave the stack committed, never half-applied, even on error.
type Operation interface {
	Run() (time.Duration, error)
}

// OperationFunc adapts a function to Operation.
type OperationFunc func() (time.Duration, error)

// Run calls f.
func (f OperationFunc) Run() (time.Duration, error) {
	return f()
}

type namedOperation struct {
	name string
	Operation
}

// Named attaches a name to op for logs and fault reports.
func Named(name string, op Operation) Operation {
	return namedOperation{name: name, Operation: op}
}

// OperationName returns the name given by Named, or "operation".
func OperationName(op Operation) string {
	if n, ok := op.(namedOperation); ok {
		return n.name
	}
	return "operation"
}

// ActionQueue runs one owner's operations one at a time, in enqueue order,
// on the owner's Handler.
//
// When an operation returns duration d, the queue stays busy for d before
// it starts the next one, so an operation enqueued during an exit animation
// waits for that animation even if it arrives after the queue drained.
// Faults are reported and never stop the queue.
type ActionQueue struct {
	handler    looper.Handler
	errHandler errors.ErrorHandler
	logger     *zap.Logger

	mu        sync.Mutex
	pending   []Operation
	executing bool
	closed    bool

	completed atomic.Int64
	faults    atomic.Int64
}

// QueueOption configures an ActionQueue.
type QueueOption func(*ActionQueue)

// WithQueueLogger sets the queue's logger.
func WithQueueLogger(logger *zap.Logger) QueueOption {
	return func(q *ActionQueue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithQueueErrorHandler sends the queue's faults to h instead of the global handler.
func WithQueueErrorHandler(h errors.ErrorHandler) QueueOption {
	return func(q *ActionQueue) {
		q.errHandler = h
	}
}

// NewActionQueue creates an idle queue that runs on h.
func NewActionQueue(h looper.Handler, opts ...QueueOption) *ActionQueue {
	q := &ActionQueue{
		handler: h,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends op. If the queue is idle, op is posted to the handler
// right away; otherwise it waits for every earlier operation. Safe to call
// from any goroutine, including from inside a running operation.
func (q *ActionQueue) Enqueue(op Operation) {
	if op == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Debug("dropping operation on closed queue", zap.String("op", OperationName(op)))
		return
	}
	q.pending = append(q.pending, op)
	if q.executing {
		q.mu.Unlock()
		return
	}
	q.executing = true
	q.mu.Unlock()

	q.schedule(0)
}

// Len returns the number of operations waiting to start.
func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Executing reports whether an operation is running or the queue is
// waiting out the duration of the last one.
func (q *ActionQueue) Executing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.executing
}

// Completed returns how many operations have run, faulted ones included.
func (q *ActionQueue) Completed() int64 {
	return q.completed.Load()
}

// Faults returns how many operations returned an error or panicked.
func (q *ActionQueue) Faults() int64 {
	return q.faults.Load()
}

// Discard drops every pending operation. An operation already running
// finishes; the queue stays usable.
func (q *ActionQueue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := len(q.pending)
	q.pending = nil
	return dropped
}

// Close discards pending operations and refuses new ones.
func (q *ActionQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	if dropped := q.Discard(); dropped > 0 {
		q.logger.Debug("discarded pending operations", zap.Int("count", dropped))
	}
}

// Flush blocks until every operation enqueued before the call has run, or
// ctx is done. It must not be called from the queue's own handler.
func (q *ActionQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrQueueClosed
	}

	done := make(chan struct{})
	q.Enqueue(Named("navigation.Flush", OperationFunc(func() (time.Duration, error) {
		close(done)
		return 0, nil
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ActionQueue) schedule(delay time.Duration) {
	if q.handler.PostDelayed(q.runNext, delay) {
		return
	}
	q.mu.Lock()
	dropped := len(q.pending)
	q.pending = nil
	q.executing = false
	q.mu.Unlock()
	q.logger.Warn("handler refused work, queue discarded", zap.Int("count", dropped))
}

func (q *ActionQueue) runNext() {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.executing = false
		q.mu.Unlock()
		return
	}
	op := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.mu.Unlock()

	d := q.run(op)
	q.schedule(d)
}

func (q *ActionQueue) run(op Operation) (d time.Duration) {
	name := OperationName(op)
	defer q.completed.Inc()
	defer func() {
		if r := recover(); r != nil {
			q.faults.Inc()
			d = 0
			errors.ReportPanicTo(q.errHandler, &errors.PanicError{
				Op:         name,
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()

	d, err := op.Run()
	if d < 0 {
		d = 0
	}
	if err != nil {
		q.faults.Inc()
		q.report(name, err)
	}
	q.logger.Debug("operation ran", zap.String("op", name), zap.Duration("duration", d), zap.Error(err))
	return d
}

func (q *ActionQueue) report(name string, err error) {
	var navErr *errors.NavError
	if !stderrors.As(err, &navErr) {
		navErr = &errors.NavError{Op: name, Kind: errors.KindOf(err), Err: err}
	}
	if navErr.StackTrace == "" {
		navErr.StackTrace = errors.CaptureStack()
	}
	errors.ReportTo(q.errHandler, navErr)
}
