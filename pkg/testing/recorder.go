package testing

import (
	"sync"
	"time"
)

// Event is one labelled moment recorded by a Recorder.
type Event struct {
	Label string
	At    time.Time
}

// Recorder collects labelled timestamps, typically from inside operations,
// so tests can assert on order and spacing. Safe for concurrent use.
type Recorder struct {
	now func() time.Time

	mu     sync.Mutex
	events []Event
}

// NewRecorder records times read from clock. A nil clock uses time.Now.
func NewRecorder(clock *FakeClock) *Recorder {
	r := &Recorder{now: time.Now}
	if clock != nil {
		r.now = clock.Now
	}
	return r
}

// Record appends an event labelled label at the current time.
func (r *Recorder) Record(label string) {
	at := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Label: label, At: at})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Labels returns the recorded labels in order.
func (r *Recorder) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, len(r.events))
	for i, e := range r.events {
		labels[i] = e.Label
	}
	return labels
}

// At returns the time of the first event labelled label.
func (r *Recorder) At(label string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Label == label {
			return e.At, true
		}
	}
	return time.Time{}, false
}
