// Package script parses and replays navsim navigation scripts.
//
// A script lists one or more owners, each with its containers and an ordered
// list of steps. Steps are user actions issued back to back; a wait step lets
// time pass so queued animations can finish.
//
//	owners:
//	  - name: main
//	    containers: [content]
//	    steps:
//	      - {op: load_root, container: content, screen: home, type: Home}
//	      - {op: push, from: home, to: detail, type: Detail}
//	      - {op: back, container: content}
//	      - {op: wait, duration: 300ms}
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/navstack/pkg/animation"
)

// Step operations.
const (
	OpLoadRoot          = "load_root"
	OpLoadMultipleRoots = "load_multiple_roots"
	OpPush              = "push"
	OpPushRemoveSource  = "push_remove_source"
	OpPop               = "pop"
	OpPopTo             = "pop_to"
	OpSilentRemove      = "silent_remove"
	OpShowHide          = "show_hide"
	OpBack              = "back"
	OpWait              = "wait"
)

// Script is a parsed navsim script.
type Script struct {
	Owners []Owner `yaml:"owners"`
}

// Owner is one navigation owner with its own queue and containers.
type Owner struct {
	Name             string          `yaml:"name"`
	Containers       []string        `yaml:"containers"`
	DefaultAnimation *animation.Spec `yaml:"default_animation,omitempty"`
	Steps            []Step          `yaml:"steps"`
}

// ScreenRef names a screen in a list-valued step field.
type ScreenRef struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type,omitempty"`
}

// Step is one scripted action. Which fields apply depends on Op.
type Step struct {
	Op            string      `yaml:"op"`
	Container     string      `yaml:"container,omitempty"`
	Screen        string      `yaml:"screen,omitempty"`
	Type          string      `yaml:"type,omitempty"`
	From          string      `yaml:"from,omitempty"`
	To            string      `yaml:"to,omitempty"`
	Index         int         `yaml:"index,omitempty"`
	Screens       []ScreenRef `yaml:"screens,omitempty"`
	IncludeTarget bool        `yaml:"include_target,omitempty"`
	Show          string      `yaml:"show,omitempty"`
	PlayEnterAnim bool        `yaml:"play_enter_anim,omitempty"`
	Duration      Duration    `yaml:"duration,omitempty"`
}

// Duration accepts Go duration strings ("300ms") or bare milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Load parses and validates a script from r.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script is empty")
		}
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a script from path.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks the script's structure: known ops, required fields,
// declared containers, and screen ids that are introduced before use.
// Navigation-level faults (a bad show index, reusing a popped screen) are
// left to the engine so they surface the way they would in an app.
func (s *Script) Validate() error {
	if len(s.Owners) == 0 {
		return fmt.Errorf("script has no owners")
	}
	names := make(map[string]bool, len(s.Owners))
	for i := range s.Owners {
		o := &s.Owners[i]
		if o.Name == "" {
			return fmt.Errorf("owner %d: name is required", i+1)
		}
		if names[o.Name] {
			return fmt.Errorf("owner %q declared twice", o.Name)
		}
		names[o.Name] = true
		if err := o.validate(); err != nil {
			return fmt.Errorf("owner %q: %w", o.Name, err)
		}
	}
	return nil
}

func (o *Owner) validate() error {
	if len(o.Containers) == 0 {
		return fmt.Errorf("at least one container is required")
	}
	containers := make(map[string]bool, len(o.Containers))
	for _, id := range o.Containers {
		if id == "" {
			return fmt.Errorf("container id is empty")
		}
		if containers[id] {
			return fmt.Errorf("container %q declared twice", id)
		}
		containers[id] = true
	}

	screens := make(map[string]bool)
	for i, step := range o.Steps {
		if err := step.validate(containers, screens); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func (st Step) validate(containers, screens map[string]bool) error {
	needContainer := func() error {
		if st.Container == "" {
			return fmt.Errorf("container is required")
		}
		if !containers[st.Container] {
			return fmt.Errorf("unknown container %q", st.Container)
		}
		return nil
	}
	known := func(field, id string) error {
		if id == "" {
			return fmt.Errorf("%s is required", field)
		}
		if !screens[id] {
			return fmt.Errorf("%s refers to unknown screen %q", field, id)
		}
		return nil
	}
	introduce := func(field, id string) error {
		if id == "" {
			return fmt.Errorf("%s is required", field)
		}
		screens[id] = true
		return nil
	}

	switch st.Op {
	case OpLoadRoot:
		if err := needContainer(); err != nil {
			return err
		}
		return introduce("screen", st.Screen)
	case OpLoadMultipleRoots:
		if err := needContainer(); err != nil {
			return err
		}
		if len(st.Screens) == 0 {
			return fmt.Errorf("screens is required")
		}
		for _, ref := range st.Screens {
			if err := introduce("screens.id", ref.ID); err != nil {
				return err
			}
		}
		return nil
	case OpPush, OpPushRemoveSource:
		if err := known("from", st.From); err != nil {
			return err
		}
		return introduce("to", st.To)
	case OpPop:
		return needContainer()
	case OpPopTo:
		if err := needContainer(); err != nil {
			return err
		}
		if st.Type == "" {
			return fmt.Errorf("type is required")
		}
		return nil
	case OpSilentRemove:
		if err := needContainer(); err != nil {
			return err
		}
		if len(st.Screens) == 0 {
			return fmt.Errorf("screens is required")
		}
		for _, ref := range st.Screens {
			if err := known("screens.id", ref.ID); err != nil {
				return err
			}
		}
		return nil
	case OpShowHide:
		if err := needContainer(); err != nil {
			return err
		}
		return known("show", st.Show)
	case OpBack:
		if st.Container == "" {
			return nil
		}
		return needContainer()
	case OpWait:
		if st.Duration <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

// screenType returns the declared type, defaulting to the screen id.
func screenType(id, typ string) string {
	if typ != "" {
		return typ
	}
	return id
}
