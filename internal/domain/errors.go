package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCancelled         = errors.New("cancelled by user")
	ErrNoVariants        = errors.New("no variants supplied")
	ErrAllVariantsFailed = errors.New("all variants failed, no comparison possible")
	ErrNotFound          = errors.New("resource not found")
	ErrClosed            = errors.New("already closed")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type UnknownNodeKindError struct {
	Kind NodeKind
}

func (e *UnknownNodeKindError) Error() string {
	return "unknown node kind: " + string(e.Kind)
}
