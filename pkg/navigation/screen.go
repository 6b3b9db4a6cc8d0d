package navigation

import (
	"fmt"
	"sync"

	"github.com/go-drift/navstack/pkg/animation"
)

// ScreenType describes the logical type that created a screen. FindByType
// matches against either name.
type ScreenType struct {
	// Name is the short type name (e.g., "DetailScreen").
	Name string
	// FullName is the qualified type name (e.g., "example.com/app/screens.DetailScreen").
	FullName string
}

// Matches reports whether name equals the short or the full type name.
func (t ScreenType) Matches(name string) bool {
	return name != "" && (t.Name == name || t.FullName == name)
}

// Metadata is the state bound to a screen before it is attached. It is the
// part of a screen that survives a save/restore round-trip.
type Metadata struct {
	Tag                    string `yaml:"tag"`
	ContainerID            string `yaml:"container_id"`
	OriginTypeName         string `yaml:"origin_type_name"`
	OriginFullName         string `yaml:"origin_full_name"`
	PlayEnterAnim          bool   `yaml:"play_enter_anim"`
	Initialized            bool   `yaml:"initialized"`
	RestoredFromSavedState bool   `yaml:"restored_from_saved_state"`
}

type attachState int

const (
	stateNew attachState = iota
	stateAttached
	stateDetached
)

// Screen is one stackable unit of UI managed by a Navigator.
//
// A screen is created by the caller, bound and attached by exactly one
// commit, and detached by a later remove commit. It is never reused after
// detachment. All methods are safe for concurrent use.
type Screen struct {
	// Handle is the host runtime's screen instance. The engine never inspects it.
	Handle any

	// Arguments is the caller's payload. It is saved with the screen's state.
	Arguments map[string]any

	typ ScreenType

	mu             sync.Mutex
	meta           Metadata
	anim           *animation.Spec
	state          attachState
	onEnterAnimEnd func()
}

// NewScreen creates an unbound screen of the given type.
func NewScreen(typ ScreenType, handle any) *Screen {
	return &Screen{typ: typ, Handle: handle}
}

// Type returns the type the screen was created with.
func (s *Screen) Type() ScreenType {
	return s.typ
}

// Tag returns the screen's unique tag, or "" if it has never been bound.
func (s *Screen) Tag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Tag
}

// ContainerID returns the container the screen was bound into.
func (s *Screen) ContainerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.ContainerID
}

// Metadata returns a copy of the bound metadata.
func (s *Screen) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// PlayEnterAnim reports whether the screen's enter animation is armed.
func (s *Screen) PlayEnterAnim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.PlayEnterAnim
}

// Initialized reports whether the host has run the screen's first-time setup.
func (s *Screen) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Initialized
}

// MarkInitialized records that the host has run the screen's first-time setup.
func (s *Screen) MarkInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.Initialized = true
}

// RestoredFromSavedState reports whether the screen came from RestoreScreen.
func (s *Screen) RestoredFromSavedState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.RestoredFromSavedState
}

// Animation returns the screen's animation set. May be nil.
func (s *Screen) Animation() *animation.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anim
}

// SetAnimation replaces the screen's animation set. Nil means no animations.
func (s *Screen) SetAnimation(spec *animation.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anim = spec
}

// Attached reports whether the screen currently sits in a container.
func (s *Screen) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateAttached
}

// OnEnterAnimEnd registers a one-shot callback fired by NotifyEnterAnimEnd.
// It replaces any callback registered earlier.
func (s *Screen) OnEnterAnimEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnterAnimEnd = fn
}

// NotifyEnterAnimEnd is called by the host when the screen's enter animation
// has finished. The registered callback runs at most once.
func (s *Screen) NotifyEnterAnimEnd() {
	s.mu.Lock()
	fn := s.onEnterAnimEnd
	s.onEnterAnimEnd = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Screen) markAttached() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateAttached
}

func (s *Screen) markDetached() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateAttached {
		s.state = stateDetached
	}
}

func (s *Screen) attachState() attachState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// String returns the type name and a short tag, e.g. "Detail#1f0c9a2e".
func (s *Screen) String() string {
	if s == nil {
		return "<nil>"
	}
	tag := s.Tag()
	if len(tag) > 8 {
		tag = tag[:8]
	}
	name := s.typ.Name
	if name == "" {
		name = s.typ.FullName
	}
	if tag == "" {
		return fmt.Sprintf("%s#unbound", name)
	}
	return fmt.Sprintf("%s#%s", name, tag)
}
