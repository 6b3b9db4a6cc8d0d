package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(`
owners:
  - name: main
    containers: [content]
    default_animation: {enter: fade_in, exit: fade_out}
    steps:
      - {op: load_root, container: content, screen: home, type: Home}
      - {op: push, from: home, to: detail}
      - {op: wait, duration: 250}
      - {op: wait, duration: 1s}
      - {op: pop_to, container: content, type: Home, include_target: true}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	o := s.Owners[0]
	if o.Name != "main" || len(o.Steps) != 5 || o.DefaultAnimation.Exit != "fade_out" {
		t.Fatalf("unexpected owner %+v", o)
	}
	if d := time.Duration(o.Steps[2].Duration); d != 250*time.Millisecond {
		t.Errorf("bare duration = %v, want 250ms", d)
	}
	if d := time.Duration(o.Steps[3].Duration); d != time.Second {
		t.Errorf("string duration = %v, want 1s", d)
	}
	if !o.Steps[4].IncludeTarget {
		t.Error("include_target not parsed")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "", "empty"},
		{"no owners", "owners: []", "no owners"},
		{"unknown field", "owners: [{name: a, containers: [c], colour: red}]", "colour"},
		{"missing name", "owners: [{containers: [c]}]", "name is required"},
		{"duplicate owner", "owners: [{name: a, containers: [c]}, {name: a, containers: [c]}]", "declared twice"},
		{"no containers", "owners: [{name: a}]", "container"},
		{"unknown op", "owners: [{name: a, containers: [c], steps: [{op: fly}]}]", `unknown op "fly"`},
		{"unknown container", "owners: [{name: a, containers: [c], steps: [{op: pop, container: d}]}]", `unknown container "d"`},
		{"push from unknown", "owners: [{name: a, containers: [c], steps: [{op: push, from: x, to: y}]}]", `unknown screen "x"`},
		{"pop_to without type", "owners: [{name: a, containers: [c], steps: [{op: pop_to, container: c}]}]", "type is required"},
		{"wait without duration", "owners: [{name: a, containers: [c], steps: [{op: wait}]}]", "duration"},
		{"bad duration", "owners: [{name: a, containers: [c], steps: [{op: wait, duration: soon}]}]", "invalid duration"},
		{"show unknown", "owners: [{name: a, containers: [c], steps: [{op: show_hide, container: c, show: x}]}]", `unknown screen "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.script))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	content := "owners: [{name: a, containers: [c], steps: [{op: back}]}]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Owners) != 1 || s.Owners[0].Steps[0].Op != OpBack {
		t.Errorf("unexpected script %+v", s)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
