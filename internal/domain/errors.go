package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is returned when input fails field-level checks.
// Fields maps the offending field name to a human readable reason.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = reason
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing canonical entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// InvalidTransitionError is returned by DietChartStatus.TransitionTo.
type InvalidTransitionError struct {
	From DietChartStatus
	To   DietChartStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid diet chart transition: %s -> %s", e.From, e.To)
}

// ForbiddenError is returned when the caller's role may not perform the operation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// UnauthorizedError covers bad credentials and revoked or expired tokens.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

// ConflictError covers unique constraint violations (username, email, license number).
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}
