package feed

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/panelarc/panelarc/internal/panel"
)

// Spec describes a feed's shape: which columns carry the three mandatory
// roles, and which kinds the archive built from it uses.
type Spec struct {
	// LocationColumn names the column holding the panel-unit identifier.
	LocationColumn string `yaml:"location_column" validate:"required"`

	// TimeColumn names the column holding the observation time.
	TimeColumn string `yaml:"time_column" validate:"required"`

	// VersionColumn names the column holding the publication version.
	VersionColumn string `yaml:"version_column" validate:"required"`

	// LocationKind tags the panel unit (e.g. "state").
	LocationKind string `yaml:"location_kind" validate:"required"`

	// TimeKind fixes how times parse: day, week, or integer.
	TimeKind string `yaml:"time_kind" validate:"required,oneof=day week integer"`
}

// DefaultSpec matches feeds using the conventional column names.
func DefaultSpec(locationKind string, timeKind panel.TimeKind) Spec {
	return Spec{
		LocationColumn: "location",
		TimeColumn:     "time_value",
		VersionColumn:  "version",
		LocationKind:   locationKind,
		TimeKind:       string(timeKind),
	}
}

// LoadSpec reads and validates a YAML feed spec.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read feed spec: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse feed spec %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, fmt.Errorf("invalid feed spec %s: %w", path, err)
	}
	return spec, nil
}

// Validate checks the spec's structural constraints.
func (s Spec) Validate() error {
	return validator.New().Struct(s)
}

// Kinds returns the spec's kinds as panel types.
func (s Spec) Kinds() (panel.LocationKind, panel.TimeKind) {
	return panel.LocationKind(s.LocationKind), panel.TimeKind(s.TimeKind)
}
