package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// From classifies err for an HTTP response. An *Error already in the chain
// wins; domain errors map to their natural status, with a failed feature
// reported as such even when its cause is a lookup miss; anything else is a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	var (
		notFound   *types.NotFoundError
		validation *types.ValidationError
		unknown    *types.UnknownFeatureError
		invalid    *types.InvalidFeatureError
		execErr    *types.ExecutionError
		regErr     *types.RegistrationError
	)
	switch {
	case errors.As(err, &execErr):
		return New(http.StatusUnprocessableEntity, "feature_failed", err)
	case errors.As(err, &notFound):
		return New(http.StatusNotFound, strings.ToLower(notFound.Kind)+"_not_found", err)
	case errors.As(err, &unknown):
		return New(http.StatusNotFound, "unknown_feature", err)
	case errors.As(err, &invalid):
		return New(http.StatusBadRequest, "invalid_feature", err)
	case errors.As(err, &validation):
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.As(err, &regErr):
		return New(http.StatusInternalServerError, "registration_failed", err)
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
