package navigation

// LastScreen returns the topmost screen of c, or nil if c is empty.
func LastScreen(c Container) *Screen {
	screens := c.Screens()
	if len(screens) == 0 {
		return nil
	}
	return screens[len(screens)-1]
}

// FindByType returns the most recently added screen of c whose origin type
// name or full name equals typ, or nil.
func FindByType(c Container, typ string) *Screen {
	screens := c.Screens()
	for i := len(screens) - 1; i >= 0; i-- {
		if screens[i].Type().Matches(typ) {
			return screens[i]
		}
	}
	return nil
}

// IndexOf returns the position of s in c, bottom first, or -1 if absent.
func IndexOf(c Container, s *Screen) int {
	for i, candidate := range c.Screens() {
		if candidate == s {
			return i
		}
	}
	return -1
}

// StackState describes the shape of a container's stack.
type StackState int

const (
	// StateEmpty means the container holds no screens.
	StateEmpty StackState = iota
	// StateSingleRoot means exactly one screen and nothing to pop.
	StateSingleRoot
	// StateMultiRootHidden means several screens coexist with at most one visible.
	StateMultiRootHidden
	// StateStacked means screens are layered above a visible root.
	StateStacked
)

// String returns a human-readable representation of the state.
func (s StackState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSingleRoot:
		return "single-root"
	case StateMultiRootHidden:
		return "multi-root-hidden"
	case StateStacked:
		return "stacked"
	default:
		return "unknown"
	}
}

// StateOf classifies c's current stack.
func StateOf(c Container) StackState {
	screens := c.Screens()
	switch len(screens) {
	case 0:
		return StateEmpty
	case 1:
		return StateSingleRoot
	}
	visible := 0
	for _, s := range screens {
		if c.IsVisible(s) {
			visible++
		}
	}
	if visible <= 1 {
		return StateMultiRootHidden
	}
	return StateStacked
}
