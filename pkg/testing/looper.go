package testing

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// FakeLooper is a looper.Handler driven by a FakeClock. Nothing runs until
// the test calls RunUntilIdle, Advance or Settle, and callbacks then run on
// the test goroutine in (due time, post order) order.
type FakeLooper struct {
	clock *FakeClock

	mu    sync.Mutex
	tasks []fakeTask
	seq   int64

	quit atomic.Bool
	ran  atomic.Int64
}

type fakeTask struct {
	due time.Time
	seq int64
	fn  func()
}

// NewFakeLooper creates a FakeLooper on a fresh FakeClock.
func NewFakeLooper() *FakeLooper {
	return &FakeLooper{clock: NewFakeClock()}
}

// Clock returns the looper's clock.
func (l *FakeLooper) Clock() *FakeClock {
	return l.clock
}

// Post schedules fn at the current fake time.
func (l *FakeLooper) Post(fn func()) bool {
	return l.PostDelayed(fn, 0)
}

// PostDelayed schedules fn at the current fake time plus delay.
func (l *FakeLooper) PostDelayed(fn func(), delay time.Duration) bool {
	if fn == nil || l.quit.Load() {
		return false
	}
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.tasks = append(l.tasks, fakeTask{due: l.clock.Now().Add(delay), seq: l.seq, fn: fn})
	return true
}

// Pending returns the number of scheduled callbacks.
func (l *FakeLooper) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Ran returns how many callbacks have run.
func (l *FakeLooper) Ran() int64 {
	return l.ran.Load()
}

// Quit drops every scheduled callback and refuses new ones.
func (l *FakeLooper) Quit() {
	l.quit.Store(true)
	l.mu.Lock()
	l.tasks = nil
	l.mu.Unlock()
}

// RunUntilIdle runs every callback due at the current time, including ones
// posted while running. Returns the number of callbacks run.
func (l *FakeLooper) RunUntilIdle() int {
	return l.runDue(l.clock.Now())
}

// Advance moves time forward by d, running callbacks as their due times
// are reached. The clock reads each callback's due time while it runs.
func (l *FakeLooper) Advance(d time.Duration) int {
	deadline := l.clock.Now().Add(d)
	n := l.runDue(deadline)
	l.clock.Set(deadline)
	return n
}

// Settle runs callbacks, advancing time as needed, until nothing is
// scheduled. Fails if that takes longer than limit of fake time.
func (l *FakeLooper) Settle(limit time.Duration) error {
	deadline := l.clock.Now().Add(limit)
	l.runDue(deadline)
	if pending := l.Pending(); pending > 0 {
		return fmt.Errorf("looper did not settle within %v: %d callbacks pending", limit, pending)
	}
	return nil
}

func (l *FakeLooper) runDue(deadline time.Time) int {
	n := 0
	for {
		task, ok := l.next(deadline)
		if !ok {
			return n
		}
		if task.due.After(l.clock.Now()) {
			l.clock.Set(task.due)
		}
		task.fn()
		l.ran.Inc()
		n++
	}
}

func (l *FakeLooper) next(deadline time.Time) (fakeTask, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return fakeTask{}, false
	}
	sort.SliceStable(l.tasks, func(i, j int) bool {
		if !l.tasks[i].due.Equal(l.tasks[j].due) {
			return l.tasks[i].due.Before(l.tasks[j].due)
		}
		return l.tasks[i].seq < l.tasks[j].seq
	})
	task := l.tasks[0]
	if task.due.After(deadline) {
		return fakeTask{}, false
	}
	l.tasks = l.tasks[1:]
	return task, true
}
