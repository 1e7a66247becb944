package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", types.NotFound("Widget", 7), http.StatusNotFound, "widget_not_found"},
		{"wrapped not found", fmt.Errorf("load: %w", types.NotFound("Media", 1)), http.StatusNotFound, "media_not_found"},
		{"feature failure beats cause", &types.ExecutionError{Feature: "reveal_card", Cause: types.NotFound("Element", "card 11")}, http.StatusUnprocessableEntity, "feature_failed"},
		{"unknown feature", &types.UnknownFeatureError{WidgetClass: "AlertWidget", Feature: "x"}, http.StatusNotFound, "unknown_feature"},
		{"base operation", &types.InvalidFeatureError{WidgetClass: "AlertWidget", Feature: "reset_playing"}, http.StatusBadRequest, "invalid_feature"},
		{"validation", &types.ValidationError{Errors: []string{"bad"}}, http.StatusBadRequest, "validation_failed"},
		{"explicit", New(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot, "teapot"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ae := From(tc.err)
			assert.Equal(t, tc.status, ae.Status)
			assert.Equal(t, tc.code, ae.Code)
			assert.ErrorIs(t, ae, tc.err)
		})
	}
	assert.Nil(t, From(nil))
}
