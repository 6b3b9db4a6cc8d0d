package navigation

import "fmt"

// Transition is a style hint attached to a commit. It says nothing about
// how long the visual effect lasts.
type Transition int

const (
	// TransitionNone applies the commit without visible styling.
	TransitionNone Transition = iota
	// TransitionOpen styles the commit as a screen opening.
	TransitionOpen
	// TransitionClose styles the commit as a screen closing.
	TransitionClose
)

// String returns a human-readable representation of the transition.
func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionOpen:
		return "open"
	case TransitionClose:
		return "close"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// PrimitiveKind identifies one structural change inside a batch.
type PrimitiveKind int

const (
	PrimitiveAdd PrimitiveKind = iota
	PrimitiveRemove
	PrimitiveShow
	PrimitiveHide
)

// String returns a human-readable representation of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveAdd:
		return "add"
	case PrimitiveRemove:
		return "remove"
	case PrimitiveShow:
		return "show"
	case PrimitiveHide:
		return "hide"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
}

// Primitive is a single structural change.
type Primitive struct {
	Kind   PrimitiveKind
	Screen *Screen
	// ContainerID is set for PrimitiveAdd.
	ContainerID string
}

// Batch is what a Container receives on commit: every primitive of one
// logically atomic navigation action.
type Batch struct {
	Transition Transition
	Primitives []Primitive

	// OnCommit runs after the batch has been applied. May be nil.
	OnCommit func()

	// AllowStateLoss tells the host to apply the batch even if the owning
	// surface has already saved its state, rather than failing or blocking.
	// The engine always sets it.
	AllowStateLoss bool
}

// Container is a host region holding an ordered stack of screens, bottom
// first. The host owns containers; the engine only changes their contents
// through Commit.
type Container interface {
	// ID returns the container's identifier.
	ID() string

	// Screens returns a snapshot of the ordered screen list, bottom first.
	Screens() []*Screen

	// IsVisible reports whether s is in the container and not hidden.
	IsVisible(s *Screen) bool

	// Commit applies every primitive of b as one unit, then runs b.OnCommit.
	// On error nothing may have been applied.
	Commit(b Batch) error
}
