package archive

import (
	"errors"
	"fmt"

	"github.com/panelarc/panelarc/internal/panel"
)

// BuildError represents a structural error detected while constructing or
// extending an archive. Build-time errors are fatal: no partial archive is
// ever returned alongside one.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Message is a human-readable description.
	Message string

	// Key identifies the offending row, when one exists.
	Key *panel.Key
}

// BuildErrorCode categorizes build-time errors.
type BuildErrorCode string

const (
	// ErrCodeDuplicateKey indicates two input rows share a
	// (location, time, version) triple with different values.
	ErrCodeDuplicateKey BuildErrorCode = "DUPLICATE_KEY"

	// ErrCodeInconsistentKind indicates a row's location or time
	// representation does not match the archive's declared kinds.
	ErrCodeInconsistentKind BuildErrorCode = "INCONSISTENT_KIND"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("%s: %s (location=%s, time=%d, version=%d)",
			e.Code, e.Message, e.Key.Location, e.Key.Time, e.Key.Version)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDuplicateKey returns true if the error is a duplicate-key build error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateKey(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeDuplicateKey
	}
	return false
}

// IsInconsistentKind returns true if the error is an inconsistent-kind
// build error. Uses errors.As to handle wrapped errors.
func IsInconsistentKind(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeInconsistentKind
	}
	return false
}

// NewDuplicateKeyError creates a BuildError for conflicting duplicate rows.
func NewDuplicateKeyError(key panel.Key) *BuildError {
	return &BuildError{
		Code:    ErrCodeDuplicateKey,
		Message: "two rows share a key with different values",
		Key:     &key,
	}
}

// NewInconsistentKindError creates a BuildError for a kind mismatch.
func NewInconsistentKindError(msg string, key *panel.Key) *BuildError {
	return &BuildError{
		Code:    ErrCodeInconsistentKind,
		Message: msg,
		Key:     key,
	}
}
