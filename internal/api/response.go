// internal/api/response.go
package api

import (
	stderrors "errors"
	"net/http"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/validation"
	"supplier-matching/internal/matching"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string                       `json:"message"`
	Code    string                       `json:"code,omitempty"`
	Fields  []validation.ValidationError `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, message string) {
	if message == "" {
		message = "unknown error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: message,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps a service error onto the envelope. message
// overrides the error's own message when set.
func respondServiceError(c *gin.Context, err error, message string) {
	stdErr := errors.Normalize(err)
	if message == "" {
		message = stdErr.Message
	}

	body := APIError{Message: message, Code: string(stdErr.Code)}

	var fbErr *matching.FeedbackValidationError
	if stderrors.As(err, &fbErr) {
		body.Fields = fbErr.Errors
	}

	c.AbortWithStatusJSON(errors.HTTPStatus(stdErr.Code), ErrorEnvelope{Error: body})
}
