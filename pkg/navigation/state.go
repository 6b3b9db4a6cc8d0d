package navigation

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/errors"
)

// savedScreen is the persisted layout of one screen.
type savedScreen struct {
	Metadata  `yaml:",inline"`
	Animation *animation.Spec `yaml:"animation,omitempty"`
	Arguments map[string]any  `yaml:"arguments,omitempty"`
}

// SaveState encodes the screen's bound metadata, animation set and
// arguments so the host can store them with its own saved state.
func (s *Screen) SaveState() ([]byte, error) {
	if s.Tag() == "" {
		return nil, errors.Precondition("cannot save unbound screen %s", s)
	}
	data, err := yaml.Marshal(savedScreen{
		Metadata:  s.Metadata(),
		Animation: s.Animation(),
		Arguments: s.Arguments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode screen %s: %w", s, err)
	}
	return data, nil
}

// RestoreScreen rebuilds a screen from SaveState output. The tag is kept
// and RestoredFromSavedState is set. The returned screen counts as attached
// to the container named in its metadata, since the host re-creates it in
// place.
func RestoreScreen(data []byte, typ ScreenType, handle any) (*Screen, error) {
	var saved savedScreen
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode screen state: %w", err)
	}
	if saved.Tag == "" {
		return nil, errors.Precondition("saved screen state has no tag")
	}

	s := NewScreen(typ, handle)
	s.Arguments = saved.Arguments
	s.meta = saved.Metadata
	s.meta.RestoredFromSavedState = true
	s.anim = saved.Animation
	s.state = stateAttached
	return s, nil
}

// RestoreScreen rebuilds a screen like the package-level RestoreScreen and
// registers its tag with the navigator's binder.
func (n *Navigator) RestoreScreen(data []byte, typ ScreenType, handle any) (*Screen, error) {
	s, err := RestoreScreen(data, typ, handle)
	if err != nil {
		return nil, err
	}
	if err := n.binder.Adopt(s); err != nil {
		return nil, err
	}
	return s, nil
}
