package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/logging"
)

// FileName is the optional configuration file looked up in the working directory.
const FileName = "navsim.yaml"

// Config represents the optional navsim.yaml configuration.
type Config struct {
	LogLevel         string          `yaml:"log_level,omitempty"`
	Catalog          string          `yaml:"catalog,omitempty"`
	DefaultAnimation *animation.Spec `yaml:"default_animation,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root             string
	LogLevel         string
	CatalogPath      string
	DefaultAnimation *animation.Spec
}

// Overrides are command-line values that take precedence over the file.
type Overrides struct {
	LogLevel    string
	CatalogPath string
}

// LoadOptional reads navsim.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads navsim.yaml (if present), applies overrides and resolves defaults.
func Resolve(dir string, o Overrides) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	level := strings.TrimSpace(o.LogLevel)
	if level == "" {
		level = strings.TrimSpace(cfg.LogLevel)
	}
	if level == "" {
		level = "info"
	}
	if _, err := logging.ParseLevel(level); err != nil {
		return nil, err
	}

	catalog := strings.TrimSpace(o.CatalogPath)
	if catalog == "" && strings.TrimSpace(cfg.Catalog) != "" {
		// Relative to the config file, not the working directory.
		catalog = strings.TrimSpace(cfg.Catalog)
		if !filepath.IsAbs(catalog) {
			catalog = filepath.Join(dir, catalog)
		}
	}

	anim := cfg.DefaultAnimation
	if anim == nil {
		anim = animation.Default()
	}

	return &Resolved{
		Root:             dir,
		LogLevel:         level,
		CatalogPath:      catalog,
		DefaultAnimation: anim,
	}, nil
}

// Catalog loads the animation catalog named by r, or the bundled default.
func (r *Resolved) Catalog() (*animation.Catalog, error) {
	if r.CatalogPath == "" {
		return animation.DefaultCatalog(), nil
	}
	return animation.LoadCatalogFile(r.CatalogPath)
}
