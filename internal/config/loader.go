package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPollingDelay applies when polling_delay is absent. An explicit 0
// is kept.
const DefaultPollingDelay = time.Second

// ErrNoLocations is returned when a config file defines no locations.
var ErrNoLocations = errors.New("config contains no locations")

// Load reads and validates a locations file. Files ending in .yml or .yaml
// are decoded as YAML, everything else as JSON.
func Load(path string) (*Locations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, normalizes and validates a locations document.
func Parse(data []byte, asYAML bool) (*Locations, error) {
	cfg := Locations{PollingDelay: Delay(DefaultPollingDelay)}
	if asYAML {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	normalize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

func normalize(cfg *Locations) {
	for i := range cfg.Locations {
		loc := &cfg.Locations[i]
		loc.Name = strings.TrimSpace(loc.Name)
		loc.Process = strings.TrimSpace(loc.Process)
		loc.File.Input = cleanPath(loc.File.Input)
		loc.File.Processing = cleanPath(loc.File.Processing)
		loc.File.Completed = cleanPath(loc.File.Completed)
		loc.File.Failed = cleanPath(loc.File.Failed)
		loc.CurrentDir = cleanPath(loc.CurrentDir)
	}
}

// cleanPath keeps empty values empty so optional folders stay unset.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(filepath.FromSlash(p))
}

func validate(cfg *Locations) error {
	if len(cfg.Locations) == 0 {
		return ErrNoLocations
	}
	if cfg.PollingDelay < 0 {
		return fmt.Errorf("polling_delay must not be negative, got %s", cfg.PollingDelay)
	}

	for i, loc := range cfg.Locations {
		id := fmt.Sprintf("location %d", i)
		if loc.Name != "" {
			id = fmt.Sprintf("location %q", loc.Name)
		}
		if loc.File.Input == "" {
			return fmt.Errorf("%s has empty input folder", id)
		}
		if loc.File.Processing == "" {
			return fmt.Errorf("%s has empty processing folder", id)
		}
		if loc.Process == "" {
			return fmt.Errorf("%s has empty process command", id)
		}
		if loc.ReadinessDelay < 0 {
			return fmt.Errorf("%s has negative readinessDelay", id)
		}
		if loc.MaxReadinessWait < 0 {
			return fmt.Errorf("%s has negative max_readiness_wait", id)
		}
	}
	return nil
}
