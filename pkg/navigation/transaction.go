package navigation

import (
	"github.com/go-drift/navstack/pkg/errors"
)

// Transaction assembles one batch of primitives for a container and commits
// it. Every transaction commits with state loss allowed.
//
//	err := navigation.Begin(c).
//	    SetTransition(navigation.TransitionOpen).
//	    Add(screen).
//	    Commit()
type Transaction struct {
	container Container
	batch     Batch
	committed bool
}

// Begin starts a transaction on c.
func Begin(c Container) *Transaction {
	return &Transaction{
		container: c,
		batch:     Batch{AllowStateLoss: true},
	}
}

// Add appends s to the container. s must already be bound.
func (t *Transaction) Add(s *Screen) *Transaction {
	t.batch.Primitives = append(t.batch.Primitives, Primitive{
		Kind:        PrimitiveAdd,
		Screen:      s,
		ContainerID: s.ContainerID(),
	})
	return t
}

// Remove detaches s from the container.
func (t *Transaction) Remove(s *Screen) *Transaction {
	t.batch.Primitives = append(t.batch.Primitives, Primitive{Kind: PrimitiveRemove, Screen: s})
	return t
}

// Show marks s visible.
func (t *Transaction) Show(s *Screen) *Transaction {
	t.batch.Primitives = append(t.batch.Primitives, Primitive{Kind: PrimitiveShow, Screen: s})
	return t
}

// Hide marks s hidden.
func (t *Transaction) Hide(s *Screen) *Transaction {
	t.batch.Primitives = append(t.batch.Primitives, Primitive{Kind: PrimitiveHide, Screen: s})
	return t
}

// SetTransition sets the style hint of the batch.
func (t *Transaction) SetTransition(tr Transition) *Transaction {
	t.batch.Transition = tr
	return t
}

// RunOnCommit sets a hook that runs once the batch has been applied.
func (t *Transaction) RunOnCommit(fn func()) *Transaction {
	t.batch.OnCommit = fn
	return t
}

// Len returns the number of primitives assembled so far.
func (t *Transaction) Len() int {
	return len(t.batch.Primitives)
}

// Commit hands the batch to the container. A transaction commits at most
// once. On success, added screens are marked attached and removed screens
// detached.
func (t *Transaction) Commit() error {
	if t.committed {
		return errors.ErrCommitted
	}
	t.committed = true

	if err := t.container.Commit(t.batch); err != nil {
		return &errors.CommitError{Container: t.container.ID(), Err: err}
	}
	for _, p := range t.batch.Primitives {
		switch p.Kind {
		case PrimitiveAdd:
			p.Screen.markAttached()
		case PrimitiveRemove:
			p.Screen.markDetached()
		}
	}
	return nil
}
