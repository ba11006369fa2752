package merge

import (
	"errors"
	"fmt"

	"github.com/panelarc/panelarc/internal/panel"
)

// Error represents a fatal merge failure. Merge errors propagate to the
// caller immediately; no partial archive is returned alongside one.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Group identifies the affected (location, time) pair, when one exists.
	Group *panel.GroupKey

	// Version identifies the affected version change-point, when relevant.
	Version *panel.Time

	// Field identifies the colliding field name, for collision errors.
	Field string
}

// ErrorCode categorizes merge errors.
type ErrorCode string

const (
	// ErrCodeUnresolvableMerge indicates the forbid policy hit a
	// key/version combination that would require gap filling.
	ErrCodeUnresolvableMerge ErrorCode = "UNRESOLVABLE_MERGE"

	// ErrCodeFieldCollision indicates both sources carry the same field
	// name after prefixing, so concatenation would be ambiguous.
	ErrCodeFieldCollision ErrorCode = "FIELD_COLLISION"

	// ErrCodeKindMismatch indicates the inputs disagree on location or
	// time kinds and cannot share one versioned view.
	ErrCodeKindMismatch ErrorCode = "KIND_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Group != nil && e.Version != nil:
		return fmt.Sprintf("%s: %s (location=%s, time=%d, version=%d)",
			e.Code, e.Message, e.Group.Location, e.Group.Time, *e.Version)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsUnresolvable returns true if the error is an unresolvable-merge error.
// Uses errors.As to handle wrapped errors.
func IsUnresolvable(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeUnresolvableMerge
	}
	return false
}

// IsFieldCollision returns true if the error is a field-collision error.
// Uses errors.As to handle wrapped errors.
func IsFieldCollision(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeFieldCollision
	}
	return false
}

// IsKindMismatch returns true if the error is a kind-mismatch error.
// Uses errors.As to handle wrapped errors.
func IsKindMismatch(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeKindMismatch
	}
	return false
}

func newUnresolvableError(group panel.GroupKey, version panel.Time) *Error {
	return &Error{
		Code:    ErrCodeUnresolvableMerge,
		Message: "value cannot be resolved without gap filling under the forbid policy",
		Group:   &group,
		Version: &version,
	}
}

func newFieldCollisionError(field string) *Error {
	return &Error{
		Code:    ErrCodeFieldCollision,
		Message: "field name present in both sources after prefixing",
		Field:   field,
	}
}

func newKindMismatchError(msg string) *Error {
	return &Error{Code: ErrCodeKindMismatch, Message: msg}
}
