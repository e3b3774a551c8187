package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrForbidden = errors.New("not the project owner")
)

// ValidationError carries field -> rule pairs. It is returned before any
// write happens.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalid(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

// ImageError reports a thumbnail that could not be decoded.
type ImageError struct {
	Field string
	Err   error
}

func (e *ImageError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *ImageError) Unwrap() error { return e.Err }
