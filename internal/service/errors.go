package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation   = errors.New("validation")       // 422
	ErrNotFound     = errors.New("not found")        // 404
	ErrForbidden    = errors.New("forbidden")        // 403
	ErrConflict     = errors.New("conflict")         // 409
	ErrUnauthorized = errors.New("unauthorized")     // 401
	ErrEmptyCart    = errors.New("cart is empty")    // 422
	ErrUpstream     = errors.New("upstream failure") // 500
)

// FieldErrors maps an input field to its first failing message.
type FieldErrors map[string]string

// ValidationError carries per-field messages and unwraps to ErrValidation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
