package overlay

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// RegistrationError is returned when a widget type cannot be registered.
type RegistrationError struct {
	TypeID string
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.TypeID == "" {
		return "widget registration: " + e.Reason
	}
	return fmt.Sprintf("widget registration %q: %s", e.TypeID, e.Reason)
}

type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(kind string, key any) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: fmt.Sprint(key)}
}

// ValidationError carries every violation found, in order.
type ValidationError struct {
	Subject string
	Errors  []string
}

func (e *ValidationError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "input"
	}
	return fmt.Sprintf("invalid %s: %s", subject, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type UnknownFeatureError struct {
	WidgetClass string
	Feature     string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("feature '%s' not found in %s", e.Feature, e.WidgetClass)
}

// InvalidFeatureError means the name is a known operation of the widget type
// that was never declared as a feature.
type InvalidFeatureError struct {
	WidgetClass string
	Feature     string
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("method '%s' of %s is not a feature", e.Feature, e.WidgetClass)
}

type ExecutionError struct {
	Feature string
	Cause   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("feature '%s' failed: %v", e.Feature, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }
