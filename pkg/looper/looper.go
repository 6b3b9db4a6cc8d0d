// Package looper provides the single-goroutine message loop that every
// navigation owner runs its action queue on.
//
// A [Handler] is the only scheduling surface the navigation engine needs:
// post a callback now, or post it after a delay. [Looper] implements it with
// one goroutine draining an unbounded FIFO, so callbacks posted from any
// goroutine run one at a time in posting order.
package looper

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/go-drift/navstack/pkg/errors"
)

// Handler schedules callbacks on an owner's timeline.
type Handler interface {
	// Post schedules fn to run as soon as possible. Returns false if the
	// handler no longer accepts work or fn is nil.
	Post(fn func()) bool

	// PostDelayed schedules fn to run once delay has elapsed. A non-positive
	// delay behaves like Post.
	PostDelayed(fn func(), delay time.Duration) bool
}

// Looper runs posted callbacks on a dedicated goroutine.
type Looper struct {
	mu     sync.Mutex
	queue  []func()
	timers map[*time.Timer]struct{}

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	quitting atomic.Bool
	quitOnce sync.Once
}

// New starts a Looper.
func New() *Looper {
	l := &Looper{
		timers: make(map[*time.Timer]struct{}),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.loop()
	return l
}

// Post schedules fn on the loop goroutine.
func (l *Looper) Post(fn func()) bool {
	if fn == nil || l.quitting.Load() {
		return false
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// PostDelayed schedules fn on the loop goroutine after delay.
func (l *Looper) PostDelayed(fn func(), delay time.Duration) bool {
	if delay <= 0 {
		return l.Post(fn)
	}
	if fn == nil || l.quitting.Load() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		l.mu.Lock()
		delete(l.timers, timer)
		l.mu.Unlock()
		l.Post(fn)
	})
	l.timers[timer] = struct{}{}
	return true
}

// Pending returns the number of callbacks waiting to run, including delayed ones.
func (l *Looper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) + len(l.timers)
}

// Quit stops the loop. Callbacks not yet started are discarded, pending
// timers are stopped, and later posts are refused. A callback that is already
// running finishes. Safe to call more than once and from the loop itself.
func (l *Looper) Quit() {
	l.quitOnce.Do(func() {
		l.quitting.Store(true)

		l.mu.Lock()
		for timer := range l.timers {
			timer.Stop()
		}
		l.timers = make(map[*time.Timer]struct{})
		l.queue = nil
		l.mu.Unlock()

		close(l.stop)
	})
}

// Done is closed once the loop goroutine has exited.
func (l *Looper) Done() <-chan struct{} {
	return l.done
}

func (l *Looper) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case <-l.wake:
		}

		for _, fn := range l.drain() {
			if l.quitting.Load() {
				return
			}
			l.invoke(fn)
		}
	}
}

func (l *Looper) drain() []func() {
	l.mu.Lock()
	callbacks := l.queue
	l.queue = nil
	l.mu.Unlock()
	return callbacks
}

func (l *Looper) invoke(fn func()) {
	defer errors.Recover("looper.invoke")
	fn()
}
