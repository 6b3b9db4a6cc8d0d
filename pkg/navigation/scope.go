package navigation

import "sync"

// Scope tracks which navigator receives back button events.
//
// In apps with nested owners (e.g., a tab screen whose tabs each run their
// own Navigator), Scope sends the back press to the innermost active owner:
//
//   - The root entry is the app's primary navigator and container
//   - The active entry is set by whoever switches tabs or opens a sub-owner
//   - When the active container has nothing to pop, the root gets the press
type Scope struct {
	mu     sync.Mutex
	root   *scopeEntry
	active *scopeEntry
}

type scopeEntry struct {
	nav       *Navigator
	container Container
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// SetRoot registers the root navigator and the container its back presses target.
func (s *Scope) SetRoot(nav *Navigator, c Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = &scopeEntry{nav: nav, container: c}
	if s.active == nil {
		s.active = s.root
	}
}

// SetActive sets which navigator and container receive back presses.
func (s *Scope) SetActive(nav *Navigator, c Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &scopeEntry{nav: nav, container: c}
}

// Active returns the navigator currently receiving back presses.
func (s *Scope) Active() (*Navigator, Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.active
	if e == nil {
		e = s.root
	}
	if e == nil {
		return nil, nil
	}
	return e.nav, e.container
}

// ClearActiveIf falls back to the root entry if nav is the active one.
func (s *Scope) ClearActiveIf(nav *Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && s.active.nav == nav {
		s.active = s.root
	}
}

// ClearRootIf clears the root entry if it belongs to nav.
func (s *Scope) ClearRootIf(nav *Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root != nil && s.root.nav == nav {
		s.root = nil
	}
	if s.active != nil && s.active.nav == nav {
		s.active = nil
	}
}

// HandleBackButton routes a back press.
//
// The active container gets the press if it can pop. Otherwise the root
// container does, if it can pop. Otherwise the root (or, without one, the
// active) navigator gets OnBackPressed, which finishes its owner.
//
// Returns true if a pop was enqueued, false if the press will finish an
// owner or there is no navigator at all. The decision reads the current
// stacks; the queued operation re-checks them when it runs.
func (s *Scope) HandleBackButton() bool {
	s.mu.Lock()
	active, root := s.active, s.root
	s.mu.Unlock()

	if active == nil {
		active = root
	}
	if active == nil {
		return false
	}

	if canPop(active.container) {
		active.nav.OnBackPressed(active.container)
		return true
	}

	// Only fall back to root if it is a different, poppable navigator.
	if root != nil && root != active && canPop(root.container) {
		root.nav.OnBackPressed(root.container)
		return true
	}

	target := root
	if target == nil {
		target = active
	}
	target.nav.OnBackPressed(target.container)
	return false
}

func canPop(c Container) bool {
	return c != nil && len(c.Screens()) > 1
}
