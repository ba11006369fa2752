package store

import (
	"fmt"

	"github.com/panelarc/panelarc/internal/panel"
)

// marshalFields serializes a field map to canonical JSON. Canonical form
// means byte-identical output for equal field maps, which the
// duplicate-detection in insertRows compares on directly.
func marshalFields(f panel.Fields) (string, error) {
	b, err := panel.MarshalCanonical(f)
	if err != nil {
		return "", fmt.Errorf("canonical fields: %w", err)
	}
	return string(b), nil
}

// unmarshalFields decodes a stored canonical JSON field map.
func unmarshalFields(data string) (panel.Fields, error) {
	f, err := panel.UnmarshalFields([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("stored fields: %w", err)
	}
	return f, nil
}
