// Package apperr defines the error taxonomy shared by the stores and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for callers deciding how to react
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInfrastructure Kind = "infrastructure"
	KindInternal       Kind = "internal"
)

// Error carries the operation and offending field or id alongside the kind
type Error struct {
	Kind    Kind
	Op      string
	Field   string
	ID      string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Message)
	}
	if e.ID != "" {
		msg += " (id " + e.ID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrInfrastructure = &Error{Kind: KindInfrastructure}
)

// Validation reports malformed input on field
func Validation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// NotFound reports a missing entity
func NotFound(op, entity, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Message: entity + " not found"}
}

// Conflict reports a concurrent write conflict on id
func Conflict(op, id, message string) *Error {
	return &Error{Kind: KindConflict, Op: op, ID: id, Message: message}
}

// Infrastructure wraps a persistence failure
func Infrastructure(op string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Op: op, Message: "persistence unavailable", Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldOf returns the offending field of a validation error, if any
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
