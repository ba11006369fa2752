package slide

import (
	"errors"
	"fmt"

	"github.com/panelarc/panelarc/internal/panel"
)

// ConfigError represents an invalid slide configuration. Config errors
// are fatal and detected before any cell is computed.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidWindow indicates a negative trailing window, or a
	// forward window in archive mode (which would require unreleased
	// future versions).
	ErrCodeInvalidWindow ConfigErrorCode = "INVALID_WINDOW"

	// ErrCodeInvalidRefPoints indicates reference points that are not
	// strictly increasing.
	ErrCodeInvalidRefPoints ConfigErrorCode = "INVALID_REF_POINTS"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidWindow returns true if the error is an invalid-window config
// error. Uses errors.As to handle wrapped errors.
func IsInvalidWindow(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidWindow
	}
	return false
}

// IsInvalidRefPoints returns true if the error is an invalid-ref-points
// config error. Uses errors.As to handle wrapped errors.
func IsInvalidRefPoints(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidRefPoints
	}
	return false
}

// CellError marks a single (location, reference point) computation
// failure. Unless fail-fast is set, cell errors are recorded inline on
// the result sequence and never abort the slide over other cells.
type CellError struct {
	Location string
	RefPoint panel.Time
	Err      error
}

// Error implements the error interface.
func (e *CellError) Error() string {
	return fmt.Sprintf("computation failed for (%s, %d): %v", e.Location, e.RefPoint, e.Err)
}

// Unwrap returns the underlying computation error.
func (e *CellError) Unwrap() error {
	return e.Err
}
