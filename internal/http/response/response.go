package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/ctxutil"
)

type APIError struct {
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	RequestID    string         `json:"request_id,omitempty"`
	Retryable    bool           `json:"retryable"`
	RecoveryHint string         `json:"recovery_hint,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondError renders any error as the canonical envelope. Errors that are
// not *apierr.Error surface as INTERNAL_ERROR without leaking internals.
func RespondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	msg := "unknown error"
	if ae.Err != nil {
		msg = ae.Err.Error()
	}
	if ae.Code == apierr.CodeInternal {
		msg = "internal error"
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Code:         ae.Code,
			Message:      msg,
			RequestID:    ctxutil.RequestID(c.Request.Context()),
			Retryable:    ae.Retryable,
			RecoveryHint: ae.RecoveryHint,
			Details:      ae.Details,
		},
	})
}
