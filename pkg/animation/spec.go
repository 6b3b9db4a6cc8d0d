// Package animation describes the animations attached to screens and
// resolves how long they take.
//
// A [Spec] names four animation resources, one per transition direction.
// The engine never plays animations itself; it only asks a [Resolver] how
// long a given direction lasts so the action queue can hold back the next
// structural change until the visual effect is over.
//
//	catalog := animation.DefaultCatalog()
//	exit := catalog.Duration(animation.Default(), animation.KindExit)
package animation

import (
	"fmt"
	"time"
)

// Kind selects one of the four animations of a Spec.
type Kind int

const (
	// KindEnter plays when a screen is added.
	KindEnter Kind = iota
	// KindExit plays when a screen is removed.
	KindExit
	// KindPopEnter plays on the screen revealed by a pop.
	KindPopEnter
	// KindPopExit plays on the screen removed by a pop.
	KindPopExit
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEnter:
		return "enter"
	case KindExit:
		return "exit"
	case KindPopEnter:
		return "pop_enter"
	case KindPopExit:
		return "pop_exit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec references the animation resources of a screen.
// Empty references resolve to zero duration.
type Spec struct {
	Enter    string `yaml:"enter,omitempty"`
	Exit     string `yaml:"exit,omitempty"`
	PopEnter string `yaml:"pop_enter,omitempty"`
	PopExit  string `yaml:"pop_exit,omitempty"`
}

// Ref returns the resource reference for k. A nil Spec has no references.
func (s *Spec) Ref(k Kind) string {
	if s == nil {
		return ""
	}
	switch k {
	case KindEnter:
		return s.Enter
	case KindExit:
		return s.Exit
	case KindPopEnter:
		return s.PopEnter
	case KindPopExit:
		return s.PopExit
	default:
		return ""
	}
}

// Resource references used by Default.
const (
	RefSlideInRight  = "slide_in_right"
	RefSlideOutLeft  = "slide_out_left"
	RefSlideInLeft   = "slide_in_left"
	RefSlideOutRight = "slide_out_right"
)

// TransitionDuration is the default duration of the bundled slide animations.
const TransitionDuration = 300 * time.Millisecond

// Default returns the slide animation set handed to freshly pushed screens
// when the owner does not provide its own.
func Default() *Spec {
	return &Spec{
		Enter:    RefSlideInRight,
		Exit:     RefSlideOutRight,
		PopEnter: RefSlideInLeft,
		PopExit:  RefSlideOutLeft,
	}
}

// None returns a Spec with no animations.
func None() *Spec {
	return &Spec{}
}

// Resolver looks up how long an animation lasts. Implementations must be
// synchronous and free of side effects.
type Resolver interface {
	Duration(spec *Spec, kind Kind) time.Duration
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(spec *Spec, kind Kind) time.Duration

// Duration calls f.
func (f ResolverFunc) Duration(spec *Spec, kind Kind) time.Duration {
	return f(spec, kind)
}
