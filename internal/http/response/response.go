package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/apierr"
	"github.com/yungbote/overlay-backend/internal/services"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	env := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	if errs := validationDetails(err); len(errs) > 0 {
		env.Error.Details = errs
	}
	c.JSON(status, env)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

var sentinels = []struct {
	err    error
	status int
	code   string
}{
	{widgets.ErrUnknownType, http.StatusBadRequest, "unknown_widget_type"},
	{widgets.ErrMissingParameter, http.StatusBadRequest, "missing_parameter"},
	{widgets.ErrUnexpectedParameter, http.StatusBadRequest, "unexpected_parameter"},
	{widgets.ErrInvalidParameter, http.StatusBadRequest, "invalid_parameter"},
	{widgets.ErrDuplicateElement, http.StatusConflict, "duplicate_element"},
	{services.ErrRoleTaken, http.StatusConflict, "role_taken"},
	{services.ErrMediaInUse, http.StatusConflict, "media_in_use"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrInvalidName, http.StatusBadRequest, "invalid_name"},
}

// Classify picks the status and code for a service error.
func Classify(err error) (int, string) {
	ae := apierr.From(err)
	if ae.Code == "feature_failed" {
		// bad arguments are the caller's fault; any other failure inside the feature is not
		for _, s := range sentinels[1:4] {
			if errors.Is(err, s.err) {
				return s.status, s.code
			}
		}
		return ae.Status, ae.Code
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.status, s.code
		}
	}
	return ae.Status, ae.Code
}

// RespondErr renders err with the status Classify picks.
func RespondErr(c *gin.Context, err error) {
	status, code := Classify(err)
	RespondError(c, status, code, err)
}

func validationDetails(err error) []string {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return verr.Errors
	}
	return nil
}
