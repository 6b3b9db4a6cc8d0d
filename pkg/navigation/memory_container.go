package navigation

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/errors"
	"github.com/go-drift/navstack/pkg/looper"
)

// MemoryContainer is an in-memory Container. It validates a whole batch
// before applying any of it, so a rejected commit leaves the stack untouched.
//
// With [WithEnterAnimations] it also plays the part of the host's animation
// system: every screen added with its enter animation armed gets
// NotifyEnterAnimEnd once the resolved enter duration has elapsed.
type MemoryContainer struct {
	id string

	mu        sync.RWMutex
	entries   []memoryEntry
	listeners map[int]func(Batch)
	nextID    int

	enterHandler  looper.Handler
	enterResolver animation.Resolver
}

type memoryEntry struct {
	screen *Screen
	hidden bool
}

// ContainerOption configures a MemoryContainer.
type ContainerOption func(*MemoryContainer)

// WithEnterAnimations makes the container fire NotifyEnterAnimEnd on added
// screens, posted on h after the enter duration resolved by r.
func WithEnterAnimations(h looper.Handler, r animation.Resolver) ContainerOption {
	return func(c *MemoryContainer) {
		c.enterHandler = h
		c.enterResolver = r
	}
}

// NewMemoryContainer creates an empty container.
func NewMemoryContainer(id string, opts ...ContainerOption) *MemoryContainer {
	c := &MemoryContainer{
		id:        id,
		listeners: make(map[int]func(Batch)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the container id.
func (c *MemoryContainer) ID() string {
	return c.id
}

// Screens returns the ordered screen list, bottom first.
func (c *MemoryContainer) Screens() []*Screen {
	c.mu.RLock()
	defer c.mu.RUnlock()
	screens := make([]*Screen, len(c.entries))
	for i, e := range c.entries {
		screens[i] = e.screen
	}
	return screens
}

// Len returns the number of screens in the container.
func (c *MemoryContainer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// IsVisible reports whether s is present and not hidden.
func (c *MemoryContainer) IsVisible(s *Screen) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.screen == s {
			return !e.hidden
		}
	}
	return false
}

// Restore puts restored screens back in place, bottom first, the way a host
// re-creates its screens after a process restart. It bypasses Commit and is
// only valid on an empty container.
func (c *MemoryContainer) Restore(screens []*Screen, hidden []bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 {
		return errors.Precondition("restore into non-empty container %q", c.id)
	}
	entries := make([]memoryEntry, 0, len(screens))
	for i, s := range screens {
		if !s.RestoredFromSavedState() || s.ContainerID() != c.id {
			return errors.Precondition("screen %s was not saved from container %q", s, c.id)
		}
		entries = append(entries, memoryEntry{screen: s, hidden: i < len(hidden) && hidden[i]})
	}
	c.entries = entries
	return nil
}

// AddCommitListener registers fn to be called with every applied batch.
// Returns a function that removes the listener.
func (c *MemoryContainer) AddCommitListener(fn func(Batch)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Commit applies b atomically. Removing a screen that is not present is
// ignored; adding a present screen, showing or hiding an absent one, or
// adding into another container's id rejects the whole batch.
func (c *MemoryContainer) Commit(b Batch) error {
	c.mu.Lock()
	next, err := c.apply(b.Primitives)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.entries = next
	listeners := make([]func(Batch), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(b)
	}
	if b.OnCommit != nil {
		b.OnCommit()
	}
	c.scheduleEnterAnimations(b.Primitives)
	return nil
}

func (c *MemoryContainer) apply(primitives []Primitive) ([]memoryEntry, error) {
	next := append([]memoryEntry(nil), c.entries...)
	indexOf := func(s *Screen) int {
		for i, e := range next {
			if e.screen == s {
				return i
			}
		}
		return -1
	}

	for i, p := range primitives {
		if p.Screen == nil {
			return nil, errors.Precondition("primitive %d (%s) has no screen", i, p.Kind)
		}
		idx := indexOf(p.Screen)
		switch p.Kind {
		case PrimitiveAdd:
			if p.ContainerID != c.id {
				return nil, errors.Precondition("screen %s targets container %q, not %q", p.Screen, p.ContainerID, c.id)
			}
			if idx >= 0 {
				return nil, errors.Precondition("screen %s is already in container %q", p.Screen, c.id)
			}
			next = append(next, memoryEntry{screen: p.Screen})
		case PrimitiveRemove:
			if idx >= 0 {
				next = append(next[:idx], next[idx+1:]...)
			}
		case PrimitiveShow, PrimitiveHide:
			if idx < 0 {
				return nil, errors.Precondition("cannot %s screen %s: not in container %q", p.Kind, p.Screen, c.id)
			}
			next[idx].hidden = p.Kind == PrimitiveHide
		default:
			return nil, fmt.Errorf("unknown primitive kind %v", p.Kind)
		}
	}
	return next, nil
}

func (c *MemoryContainer) scheduleEnterAnimations(primitives []Primitive) {
	if c.enterHandler == nil {
		return
	}
	for _, p := range primitives {
		if p.Kind != PrimitiveAdd || !p.Screen.PlayEnterAnim() {
			continue
		}
		var d time.Duration
		if c.enterResolver != nil {
			d = c.enterResolver.Duration(p.Screen.Animation(), animation.KindEnter)
		}
		c.enterHandler.PostDelayed(p.Screen.NotifyEnterAnimEnd, d)
	}
}
