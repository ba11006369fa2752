package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: fixture archives plus a
// single operation whose output is compared against a golden file.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Archives are the fixture archives the operation runs against.
	Archives []ArchiveFixture `yaml:"archives"`

	// Op is the operation under test.
	Op Op `yaml:"op"`
}

// ArchiveFixture declares one in-memory archive.
type ArchiveFixture struct {
	Name         string       `yaml:"name"`
	LocationKind string       `yaml:"location_kind"`
	TimeKind     string       `yaml:"time_kind"`
	Rows         []RowFixture `yaml:"rows"`
}

// RowFixture is one observation row. Times and versions are textual and
// parsed under the fixture's time kind, so day-kind scenarios can use
// calendar dates.
type RowFixture struct {
	Location string         `yaml:"location"`
	Time     string         `yaml:"time"`
	Version  string         `yaml:"version"`
	Fields   map[string]any `yaml:"fields"`
}

// Op selects and parameterizes the operation under test.
type Op struct {
	// Kind is one of "snapshot", "compact", "merge", "slide".
	Kind string `yaml:"kind"`

	// Archive names the fixture for snapshot, compact, and slide.
	Archive string `yaml:"archive,omitempty"`

	// AsOf is the snapshot cutoff, or the value-mode cutoff for slide.
	AsOf string `yaml:"as_of,omitempty"`

	// Merge parameters.
	Left        string `yaml:"left,omitempty"`
	Right       string `yaml:"right,omitempty"`
	Policy      string `yaml:"policy,omitempty"`
	PrefixLeft  string `yaml:"prefix_left,omitempty"`
	PrefixRight string `yaml:"prefix_right,omitempty"`

	// Slide parameters.
	Mode         string   `yaml:"mode,omitempty"`
	WindowBefore int64    `yaml:"window_before,omitempty"`
	WindowAfter  int64    `yaml:"window_after,omitempty"`
	RefPoints    []string `yaml:"ref_points,omitempty"`
	Computation  struct {
		Name  string `yaml:"name"`
		Field string `yaml:"field,omitempty"`
	} `yaml:"computation,omitempty"`
}

// Operation kind constants.
const (
	OpSnapshot = "snapshot"
	OpCompact  = "compact"
	OpMerge    = "merge"
	OpSlide    = "slide"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly instead of silently validating
// nothing.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Archives) == 0 {
		return fmt.Errorf("archives list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Archives))
	for i, a := range s.Archives {
		if a.Name == "" {
			return fmt.Errorf("archives[%d]: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("archives[%d]: duplicate archive name %q", i, a.Name)
		}
		names[a.Name] = true
		if a.LocationKind == "" {
			return fmt.Errorf("archives[%d]: location_kind is required", i)
		}
		if a.TimeKind == "" {
			return fmt.Errorf("archives[%d]: time_kind is required", i)
		}
	}

	switch s.Op.Kind {
	case OpSnapshot:
		if s.Op.Archive == "" {
			return fmt.Errorf("op: archive is required for snapshot")
		}
		if s.Op.AsOf == "" {
			return fmt.Errorf("op: as_of is required for snapshot")
		}
	case OpCompact:
		if s.Op.Archive == "" {
			return fmt.Errorf("op: archive is required for compact")
		}
	case OpMerge:
		if s.Op.Left == "" || s.Op.Right == "" {
			return fmt.Errorf("op: left and right are required for merge")
		}
		if s.Op.Policy == "" {
			return fmt.Errorf("op: policy is required for merge")
		}
	case OpSlide:
		if s.Op.Archive == "" {
			return fmt.Errorf("op: archive is required for slide")
		}
		if len(s.Op.RefPoints) == 0 {
			return fmt.Errorf("op: ref_points is required for slide")
		}
		if s.Op.Computation.Name == "" {
			return fmt.Errorf("op: computation.name is required for slide")
		}
	case "":
		return fmt.Errorf("op: kind is required")
	default:
		return fmt.Errorf("op: unknown kind %q", s.Op.Kind)
	}

	for _, name := range []string{s.Op.Archive, s.Op.Left, s.Op.Right} {
		if name != "" && !names[name] {
			return fmt.Errorf("op references unknown archive %q", name)
		}
	}
	return nil
}
