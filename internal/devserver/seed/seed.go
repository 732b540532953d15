// Package seed holds the static game content served by the dev backend.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	avatarmodels "piano-quest/internal/features/avatar/models"
	recognitionmodels "piano-quest/internal/features/recognition/models"
)

//go:embed seed.yaml
var defaultSeed []byte

type Sublevel struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Song        string `yaml:"song"`
	TargetScore int    `yaml:"target_score"`
}

type Level struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Sublevels   []Sublevel `yaml:"sublevels"`
}

// Seed is the catalog content. Level and sublevel order defines their numbers.
type Seed struct {
	Levels  []Level                   `yaml:"levels"`
	Outfits []avatarmodels.Outfit     `yaml:"outfits"`
	Tracks  []recognitionmodels.Track `yaml:"tracks"`
}

// Default returns the embedded seed.
func Default() (*Seed, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file, or the embedded seed when path is empty.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates seed YAML.
func Parse(b []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) validate() error {
	if len(s.Levels) == 0 {
		return fmt.Errorf("seed: no levels")
	}
	ids := make(map[string]bool)
	for _, l := range s.Levels {
		if l.ID == "" || ids[l.ID] {
			return fmt.Errorf("seed: missing or duplicate level id %q", l.ID)
		}
		ids[l.ID] = true
		if len(l.Sublevels) == 0 {
			return fmt.Errorf("seed: level %s has no sublevels", l.ID)
		}
		for _, sl := range l.Sublevels {
			if sl.ID == "" || ids[sl.ID] {
				return fmt.Errorf("seed: missing or duplicate sublevel id %q", sl.ID)
			}
			ids[sl.ID] = true
		}
	}
	outfits := make(map[string]bool)
	for _, o := range s.Outfits {
		if o.ID == "" || outfits[o.ID] {
			return fmt.Errorf("seed: missing or duplicate outfit id %q", o.ID)
		}
		if o.Slot == "" {
			return fmt.Errorf("seed: outfit %s has no slot", o.ID)
		}
		outfits[o.ID] = true
	}
	return nil
}
