package navigation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/errors"
	"github.com/go-drift/navstack/pkg/looper"
)

// Owner is the surface a Navigator works for: a root window or a screen
// hosting its own child containers.
type Owner interface {
	// DefaultAnimation returns the animation set given to freshly pushed screens.
	DefaultAnimation() *animation.Spec

	// Finish closes the owning surface. Called by OnBackPressed when nothing
	// is left to pop.
	Finish()
}

// OwnerFuncs adapts two functions to Owner. Nil fields fall back to
// animation.Default and a no-op.
type OwnerFuncs struct {
	DefaultAnimationFunc func() *animation.Spec
	FinishFunc           func()
}

// DefaultAnimation calls DefaultAnimationFunc.
func (o OwnerFuncs) DefaultAnimation() *animation.Spec {
	if o.DefaultAnimationFunc == nil {
		return animation.Default()
	}
	return o.DefaultAnimationFunc()
}

// Finish calls FinishFunc.
func (o OwnerFuncs) Finish() {
	if o.FinishFunc != nil {
		o.FinishFunc()
	}
}

// Navigator sequences every structural change an owner makes to its
// containers through one ActionQueue.
//
// Every method returns immediately; the work runs later on the owner's
// Handler, strictly in call order. Faults surface through the configured
// ErrorHandler, never as return values.
//
//	nav := navigation.NewNavigator(owner, looper.New())
//	nav.LoadRoot(content, home, animation.None(), false)
//	nav.Push(home, detail)
//	nav.Pop(content) // the next operation starts once detail has animated out
type Navigator struct {
	owner    Owner
	queue    *ActionQueue
	binder   *Binder
	resolver animation.Resolver
	logger   *zap.Logger
	errs     errors.ErrorHandler

	mu         sync.RWMutex
	containers map[string]Container
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithResolver sets the animation resolver used for exit durations.
func WithResolver(r animation.Resolver) Option {
	return func(n *Navigator) {
		if r != nil {
			n.resolver = r
		}
	}
}

// WithLogger sets the navigator's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithErrorHandler routes the navigator's faults to h.
func WithErrorHandler(h errors.ErrorHandler) Option {
	return func(n *Navigator) {
		n.errs = h
	}
}

// WithBinder shares b with another navigator of the same root.
func WithBinder(b *Binder) Option {
	return func(n *Navigator) {
		if b != nil {
			n.binder = b
		}
	}
}

// NewNavigator creates a navigator for owner whose queue runs on h.
func NewNavigator(owner Owner, h looper.Handler, opts ...Option) *Navigator {
	if owner == nil {
		owner = OwnerFuncs{}
	}
	n := &Navigator{
		owner:      owner,
		binder:     NewBinder(),
		resolver:   animation.DefaultCatalog(),
		logger:     zap.NewNop(),
		containers: make(map[string]Container),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.queue = NewActionQueue(h, WithQueueLogger(n.logger), WithQueueErrorHandler(n.errs))
	return n
}

// NewChild creates a navigator for a sub-owner (typically a screen hosting
// its own containers). The child has its own queue on h and shares this
// navigator's binder, resolver, logger and error handler.
func (n *Navigator) NewChild(owner Owner, h looper.Handler) *Navigator {
	return NewNavigator(owner, h,
		WithBinder(n.binder),
		WithResolver(n.resolver),
		WithLogger(n.logger),
		WithErrorHandler(n.errs),
	)
}

// Queue returns the navigator's action queue.
func (n *Navigator) Queue() *ActionQueue {
	return n.queue
}

// Binder returns the navigator's binder.
func (n *Navigator) Binder() *Binder {
	return n.binder
}

// RegisterContainer makes c known to the navigator so that operations
// addressing screens by their bound container id can find it.
func (n *Navigator) RegisterContainer(c Container) {
	if c == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.containers[c.ID()] = c
}

// Container returns the registered container with the given id.
func (n *Navigator) Container(id string) (Container, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.containers[id]
	return c, ok
}

// Flush blocks until every operation enqueued so far has run.
func (n *Navigator) Flush(ctx context.Context) error {
	return n.queue.Flush(ctx)
}

// Close tears the navigator down: pending operations are discarded and new
// ones are refused.
func (n *Navigator) Close() {
	n.queue.Close()
}

// LoadRoot attaches s as the bottom screen of c.
func (n *Navigator) LoadRoot(c Container, s *Screen, anim *animation.Spec, playEnterAnim bool) {
	n.RegisterContainer(c)
	n.enqueue("LoadRoot", c.ID(), func() (time.Duration, error) {
		if err := n.binder.Bind(s, c.ID(), playEnterAnim); err != nil {
			return 0, err
		}
		s.SetAnimation(anim)
		return 0, Begin(c).SetTransition(TransitionOpen).Add(s).Commit()
	})
}

// LoadMultipleRoots attaches every screen to c in one commit and shows only
// the one at the 1-based showIndex. No enter animation plays.
func (n *Navigator) LoadMultipleRoots(c Container, showIndex int, screens ...*Screen) {
	n.RegisterContainer(c)
	n.enqueue("LoadMultipleRoots", c.ID(), func() (time.Duration, error) {
		if showIndex < 1 || showIndex > len(screens) {
			return 0, fmt.Errorf("%w: %d not in [1, %d]", errors.ErrShowIndexOutOfRange, showIndex, len(screens))
		}
		seen := make(map[*Screen]struct{}, len(screens))
		for _, s := range screens {
			if err := n.binder.CanBind(s); err != nil {
				return 0, err
			}
			if _, dup := seen[s]; dup {
				return 0, errors.Precondition("screen %s passed twice", s)
			}
			seen[s] = struct{}{}
		}

		tx := Begin(c)
		for i, s := range screens {
			if err := n.binder.Bind(s, c.ID(), false); err != nil {
				return 0, err
			}
			s.SetAnimation(nil)
			tx.Add(s)
			if i+1 == showIndex {
				tx.Show(s)
			} else {
				tx.Hide(s)
			}
		}
		return 0, tx.Commit()
	})
}

// ShowHideAll shows show and hides every other screen of c in one commit.
func (n *Navigator) ShowHideAll(c Container, show *Screen) {
	n.RegisterContainer(c)
	n.enqueue("ShowHideAll", c.ID(), func() (time.Duration, error) {
		if IndexOf(c, show) < 0 {
			return 0, fmt.Errorf("%w: %s is not in container %q", errors.ErrNotAttached, show, c.ID())
		}
		tx := Begin(c)
		for _, s := range c.Screens() {
			if s == show {
				tx.Show(s)
			} else {
				tx.Hide(s)
			}
		}
		return 0, tx.Commit()
	})
}

// Push adds to on top of from's container with the owner's default
// animation and its enter animation armed.
func (n *Navigator) Push(from, to *Screen) {
	n.enqueue("Push", containerIDOf(from), func() (time.Duration, error) {
		c, err := n.attachedContainer(from)
		if err != nil {
			return 0, err
		}
		return 0, n.pushInto(c, to, nil)
	})
}

// PushAndRemoveSource pushes to like Push, then removes from silently once
// to's enter animation has finished, so the user never sees the gap.
func (n *Navigator) PushAndRemoveSource(from, to *Screen) {
	n.enqueue("PushAndRemoveSource", containerIDOf(from), func() (time.Duration, error) {
		c, err := n.attachedContainer(from)
		if err != nil {
			return 0, err
		}
		return 0, n.pushInto(c, to, func() {
			n.SilentRemove(c, from)
		})
	})
}

// SilentRemove removes screens from c in one commit with no transition.
// Screens that are no longer in c are skipped.
func (n *Navigator) SilentRemove(c Container, screens ...*Screen) {
	n.RegisterContainer(c)
	n.enqueue("SilentRemove", c.ID(), func() (time.Duration, error) {
		tx := Begin(c).SetTransition(TransitionNone)
		for _, s := range screens {
			if IndexOf(c, s) < 0 {
				n.logger.Debug("silent remove skipped absent screen",
					zap.String("container", c.ID()), zap.Stringer("screen", s))
				continue
			}
			tx.Remove(s)
		}
		if tx.Len() == 0 {
			return 0, nil
		}
		return 0, tx.Commit()
	})
}

// Pop removes the top screen of c. The next operation waits for the
// removed screen's exit animation.
func (n *Navigator) Pop(c Container) {
	n.RegisterContainer(c)
	n.enqueue("Pop", c.ID(), func() (time.Duration, error) {
		return n.popTop(c)
	})
}

// PopTo removes every screen above the most recent screen of targetType,
// and that screen too if includeTarget is set. Nothing happens if c is
// empty or holds no such screen.
func (n *Navigator) PopTo(c Container, targetType string, includeTarget bool) {
	n.RegisterContainer(c)
	n.enqueue("PopTo", c.ID(), func() (time.Duration, error) {
		return n.popTo(c, targetType, includeTarget)
	})
}

// OnBackPressed pops the top screen of c if more than one screen remains;
// otherwise it asks the owner to finish. The screen count is read when the
// operation runs, after everything enqueued before it.
func (n *Navigator) OnBackPressed(c Container) {
	n.RegisterContainer(c)
	n.enqueue("OnBackPressed", c.ID(), func() (time.Duration, error) {
		if len(c.Screens()) > 1 {
			return n.popTop(c)
		}
		n.logger.Debug("no more screens to pop, finishing owner", zap.String("container", c.ID()))
		n.owner.Finish()
		return 0, nil
	})
}

func (n *Navigator) enqueue(name, containerID string, fn func() (time.Duration, error)) {
	op := "navigation." + name
	n.queue.Enqueue(Named(op, OperationFunc(func() (time.Duration, error) {
		d, err := fn()
		if err != nil {
			return d, &errors.NavError{
				Op:        op,
				Kind:      errors.KindOf(err),
				Err:       err,
				Container: containerID,
			}
		}
		return d, nil
	})))
}

func containerIDOf(s *Screen) string {
	if s == nil {
		return ""
	}
	return s.ContainerID()
}

func (n *Navigator) attachedContainer(s *Screen) (Container, error) {
	if s == nil {
		return nil, errors.Precondition("nil source screen")
	}
	c, ok := n.Container(s.ContainerID())
	if !ok || IndexOf(c, s) < 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotAttached, s)
	}
	return c, nil
}

func (n *Navigator) pushInto(c Container, to *Screen, onEnterEnd func()) error {
	if err := n.binder.Bind(to, c.ID(), true); err != nil {
		return err
	}
	to.SetAnimation(n.owner.DefaultAnimation())
	// Registered before the commit so a host that reports the end of the
	// enter animation synchronously is still observed.
	if onEnterEnd != nil {
		to.OnEnterAnimEnd(onEnterEnd)
	}
	if err := Begin(c).SetTransition(TransitionOpen).Add(to).Commit(); err != nil {
		if onEnterEnd != nil {
			to.OnEnterAnimEnd(nil)
		}
		return err
	}
	return nil
}

func (n *Navigator) popTop(c Container) (time.Duration, error) {
	top := LastScreen(c)
	if top == nil {
		n.logger.Debug("nothing to pop", zap.String("container", c.ID()), zap.Stringer("kind", errors.KindNotFound))
		return 0, nil
	}
	d := n.resolver.Duration(top.Animation(), animation.KindExit)
	if err := Begin(c).SetTransition(TransitionClose).Remove(top).Commit(); err != nil {
		return 0, err
	}
	return d, nil
}

func (n *Navigator) popTo(c Container, targetType string, includeTarget bool) (time.Duration, error) {
	top := LastScreen(c)
	target := FindByType(c, targetType)
	if top == nil || target == nil {
		n.logger.Debug("pop-to target not found",
			zap.String("container", c.ID()), zap.String("type", targetType), zap.Stringer("kind", errors.KindNotFound))
		return 0, nil
	}

	screens := c.Screens()
	topIndex, targetIndex := -1, -1
	for i, s := range screens {
		switch s {
		case top:
			topIndex = i
		case target:
			targetIndex = i
		}
	}
	if top == target {
		targetIndex = topIndex
	}
	if targetIndex == topIndex && !includeTarget {
		return 0, nil
	}

	tx := Begin(c).SetTransition(TransitionClose)
	if targetIndex > topIndex {
		n.logger.Debug("pop-to target above top, removing top only",
			zap.String("container", c.ID()), zap.String("type", targetType), zap.Stringer("kind", errors.KindInvertedRange))
	} else {
		start := targetIndex + 1
		if includeTarget {
			start = targetIndex
		}
		for _, s := range screens[start:topIndex] {
			tx.Remove(s)
		}
	}
	tx.Remove(top)

	d := n.resolver.Duration(top.Animation(), animation.KindExit)
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return d, nil
}
