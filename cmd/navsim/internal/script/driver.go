package script

import (
	"context"
	"fmt"
	"time"

	"github.com/go-drift/navstack/pkg/looper"
	"github.com/go-drift/navstack/pkg/navigation"
	navtest "github.com/go-drift/navstack/pkg/testing"
)

// driver owns an owner's timeline during a replay.
type driver interface {
	looper.Handler

	// step runs whatever the last step made runnable right now.
	step(ctx context.Context) error
	// wait lets d pass.
	wait(ctx context.Context, d time.Duration) error
	// finish lets every queued operation and pending animation complete.
	finish(ctx context.Context, q *navigation.ActionQueue) error
	elapsed() time.Duration
	close()
}

func newDriver(opts Options) driver {
	if opts.Realtime {
		return &realDriver{Looper: looper.New(), start: time.Now()}
	}
	return &virtualDriver{FakeLooper: navtest.NewFakeLooper(), limit: opts.SettleLimit}
}

// virtualDriver replays on a fake clock; waits take no wall time.
type virtualDriver struct {
	*navtest.FakeLooper
	limit time.Duration
}

func (d *virtualDriver) step(context.Context) error {
	d.RunUntilIdle()
	return nil
}

func (d *virtualDriver) wait(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Advance(dur)
	return nil
}

func (d *virtualDriver) finish(ctx context.Context, _ *navigation.ActionQueue) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.Settle(d.limit)
}

func (d *virtualDriver) elapsed() time.Duration {
	return d.Clock().Since()
}

func (d *virtualDriver) close() {
	d.Quit()
}

// realDriver replays on a real looper goroutine.
type realDriver struct {
	*looper.Looper
	start time.Time
}

const idlePoll = 5 * time.Millisecond

func (d *realDriver) step(ctx context.Context) error {
	done := make(chan struct{})
	if !d.Post(func() { close(done) }) {
		return fmt.Errorf("looper stopped")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *realDriver) wait(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish polls until the queue is idle and no callback is pending on two
// consecutive ticks; a timer that just fired may briefly show neither.
func (d *realDriver) finish(ctx context.Context, q *navigation.ActionQueue) error {
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()
	idle := 0
	for idle < 2 {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !q.Executing() && d.Pending() == 0 {
			idle++
		} else {
			idle = 0
		}
	}
	return nil
}

func (d *realDriver) elapsed() time.Duration {
	return time.Since(d.start)
}

func (d *realDriver) close() {
	d.Quit()
}
