package navigation

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-drift/navstack/pkg/errors"
	navtest "github.com/go-drift/navstack/pkg/testing"
)

func recordOp(rec *navtest.Recorder, label string, d time.Duration) Operation {
	return OperationFunc(func() (time.Duration, error) {
		rec.Record(label)
		return d, nil
	})
}

func TestActionQueueRunsInOrder(t *testing.T) {
	l := navtest.NewFakeLooper()
	rec := navtest.NewRecorder(l.Clock())
	q := NewActionQueue(l)

	delays := []time.Duration{0, 50 * time.Millisecond, 0, 300 * time.Millisecond, 10 * time.Millisecond}
	for i, d := range delays {
		q.Enqueue(recordOp(rec, fmt.Sprint(i), d))
	}
	if err := l.Settle(time.Minute); err != nil {
		t.Fatal(err)
	}

	events := rec.Events()
	if len(events) != len(delays) {
		t.Fatalf("ran %d operations, want %d", len(events), len(delays))
	}
	var elapsed time.Duration
	for i, e := range events {
		if e.Label != fmt.Sprint(i) {
			t.Fatalf("order = %v", rec.Labels())
		}
		if got := e.At.Sub(navtest.Epoch); got != elapsed {
			t.Errorf("op %d started at +%v, want +%v", i, got, elapsed)
		}
		elapsed += delays[i]
	}
	if q.Executing() {
		t.Error("queue should be idle once drained")
	}
	if q.Completed() != int64(len(delays)) {
		t.Errorf("Completed = %d", q.Completed())
	}
}

func TestActionQueueOneAtATime(t *testing.T) {
	l := navtest.NewFakeLooper()
	q := NewActionQueue(l)
	running := 0

	for i := 0; i < 10; i++ {
		q.Enqueue(OperationFunc(func() (time.Duration, error) {
			running++
			defer func() { running-- }()
			if running != 1 {
				t.Errorf("%d operations running at once", running)
			}
			// Enqueueing from inside an operation must not run it inline.
			q.Enqueue(OperationFunc(func() (time.Duration, error) { return 0, nil }))
			return 0, nil
		}))
	}
	l.RunUntilIdle()
	if q.Completed() != 20 {
		t.Errorf("Completed = %d, want 20", q.Completed())
	}
}

func TestActionQueueEnqueueNeverRunsInline(t *testing.T) {
	l := navtest.NewFakeLooper()
	q := NewActionQueue(l)
	ran := false
	q.Enqueue(OperationFunc(func() (time.Duration, error) {
		ran = true
		return 0, nil
	}))
	if ran {
		t.Fatal("operation ran inside Enqueue")
	}
	if !q.Executing() {
		t.Error("queue should be executing once work is posted")
	}
	l.RunUntilIdle()
	if !ran {
		t.Fatal("operation never ran")
	}
}

func TestActionQueueSurvivesFaults(t *testing.T) {
	l := navtest.NewFakeLooper()
	rec := navtest.NewRecorder(l.Clock())
	faults := &captureHandler{}
	q := NewActionQueue(l, WithQueueErrorHandler(faults))

	q.Enqueue(Named("failing", OperationFunc(func() (time.Duration, error) {
		return time.Second, errors.Precondition("bad input")
	})))
	q.Enqueue(Named("panicking", OperationFunc(func() (time.Duration, error) {
		panic("boom")
	})))
	q.Enqueue(recordOp(rec, "after", 0))
	if err := l.Settle(time.Minute); err != nil {
		t.Fatal(err)
	}

	if len(faults.errs) != 1 || len(faults.panics) != 1 {
		t.Fatalf("errs=%d panics=%d, want 1 and 1", len(faults.errs), len(faults.panics))
	}
	if err := faults.errs[0]; err.Op != "failing" || err.Kind != errors.KindPrecondition || err.StackTrace == "" {
		t.Errorf("unexpected error report %+v", err)
	}
	if p := faults.panics[0]; p.Op != "panicking" || p.Value != "boom" {
		t.Errorf("unexpected panic report %+v", p)
	}
	// The failing op's duration still spaces the queue; the panic does not.
	if at, ok := rec.At("after"); !ok || at.Sub(navtest.Epoch) != time.Second {
		t.Errorf("after ran at %v (ok=%v), want +1s", at, ok)
	}
	if q.Faults() != 2 || q.Completed() != 3 {
		t.Errorf("Faults=%d Completed=%d", q.Faults(), q.Completed())
	}
}

func TestActionQueueNegativeDurationIsZero(t *testing.T) {
	l := navtest.NewFakeLooper()
	rec := navtest.NewRecorder(l.Clock())
	q := NewActionQueue(l)
	q.Enqueue(recordOp(rec, "a", -time.Second))
	q.Enqueue(recordOp(rec, "b", 0))
	l.RunUntilIdle()

	if labels := rec.Labels(); len(labels) != 2 {
		t.Fatalf("labels = %v", labels)
	}
}

func TestActionQueueIdleRestart(t *testing.T) {
	l := navtest.NewFakeLooper()
	rec := navtest.NewRecorder(l.Clock())
	q := NewActionQueue(l)

	q.Enqueue(recordOp(rec, "first", 0))
	l.RunUntilIdle()
	l.Advance(time.Second)
	q.Enqueue(recordOp(rec, "second", 0))
	l.RunUntilIdle()

	if at, _ := rec.At("second"); at.Sub(navtest.Epoch) != time.Second {
		t.Errorf("second ran at +%v, want +1s", at.Sub(navtest.Epoch))
	}
}

func TestActionQueueDiscard(t *testing.T) {
	l := navtest.NewFakeLooper()
	rec := navtest.NewRecorder(l.Clock())
	q := NewActionQueue(l)

	q.Enqueue(recordOp(rec, "a", 0))
	q.Enqueue(recordOp(rec, "b", 0))
	q.Enqueue(recordOp(rec, "c", 0))
	if n := q.Discard(); n != 3 {
		t.Errorf("Discard = %d, want 3", n)
	}
	l.RunUntilIdle()
	q.Enqueue(recordOp(rec, "d", 0))
	l.RunUntilIdle()

	if labels := rec.Labels(); len(labels) != 1 || labels[0] != "d" {
		t.Errorf("labels = %v, want [d]", labels)
	}
}

func TestActionQueueHandlerRefusal(t *testing.T) {
	l := navtest.NewFakeLooper()
	q := NewActionQueue(l)
	l.Quit()

	q.Enqueue(OperationFunc(func() (time.Duration, error) { return 0, nil }))
	if q.Executing() || q.Len() != 0 {
		t.Errorf("Executing=%v Len=%d after refusal", q.Executing(), q.Len())
	}
}

func TestActionQueueFlushHonorsContext(t *testing.T) {
	l := navtest.NewFakeLooper()
	q := NewActionQueue(l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Flush(ctx); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Flush = %v, want context.Canceled", err)
	}
}

func TestOperationName(t *testing.T) {
	op := OperationFunc(func() (time.Duration, error) { return 0, nil })
	if got := OperationName(op); got != "operation" {
		t.Errorf("OperationName = %q", got)
	}
	if got := OperationName(Named("navigation.Pop", op)); got != "navigation.Pop" {
		t.Errorf("OperationName = %q", got)
	}
}
