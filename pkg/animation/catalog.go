package animation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog is a table of animation resources and their declared durations.
// It implements Resolver. All methods are safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	durations map[string]time.Duration

	// Fallback is returned for references missing from the table.
	Fallback time.Duration
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{durations: make(map[string]time.Duration)}
}

// DefaultCatalog returns a catalog holding the references used by Default.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, ref := range []string{RefSlideInRight, RefSlideOutLeft, RefSlideInLeft, RefSlideOutRight} {
		c.Set(ref, TransitionDuration)
	}
	return c
}

// Set registers the duration of ref.
func (c *Catalog) Set(ref string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durations[ref] = d
}

// Lookup returns the duration registered for ref.
func (c *Catalog) Lookup(ref string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.durations[ref]
	return d, ok
}

// Len returns the number of registered references.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.durations)
}

// Duration resolves the animation selected by kind. A nil spec or an empty
// reference yields zero; an unknown reference yields Fallback.
func (c *Catalog) Duration(spec *Spec, kind Kind) time.Duration {
	ref := spec.Ref(kind)
	if ref == "" {
		return 0
	}
	if d, ok := c.Lookup(ref); ok {
		return d
	}
	return c.Fallback
}

// catalogFile is the on-disk layout:
//
//	fallback: 250ms
//	animations:
//	  slide_in_right: 300ms
//	  fade_out: 150      # bare integers are milliseconds
type catalogFile struct {
	Fallback   string            `yaml:"fallback,omitempty"`
	Animations map[string]string `yaml:"animations"`
}

// LoadCatalog parses a YAML catalog from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse animation catalog: %w", err)
	}

	c := NewCatalog()
	if file.Fallback != "" {
		d, err := parseDuration(file.Fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		c.Fallback = d
	}
	for ref, raw := range file.Animations {
		d, err := parseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", ref, err)
		}
		c.Set(ref, d)
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read animation catalog: %w", err)
	}
	return LoadCatalog(bytes.NewReader(data))
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %q", raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
