// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Error is the API error type every handler speaks. Status maps directly to
// the HTTP response code; Fields carries per-field validation messages.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Map converts repo/infra errors into API errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Message: "request timed out"}

	case errors.Is(err, context.Canceled):
		return &Error{Status: http.StatusInternalServerError, Message: "request was canceled"}

	default:
		// storage/infra failure: short diagnostic only, never driver internals
		return Internal("something went wrong while talking to the database")
	}
}

// Abort writes the mapped error as a JSON response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	apiErr := Map(err)

	body := gin.H{"message": apiErr.Message}
	if len(apiErr.Fields) > 0 {
		body["errors"] = apiErr.Fields
	}
	c.AbortWithStatusJSON(apiErr.Status, body)
}

// InvalidArgument creates a 400 error for bad input.
func InvalidArgument(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Internal creates a 500 error with a sanitized message.
func Internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}

// Validation builds a 400 error carrying per-field messages. If err is a
// validator error set the field messages are extracted from it, otherwise the
// raw binding error text is used as the message.
func Validation(err error) *Error {
	out := &Error{
		Status:  http.StatusBadRequest,
		Message: "request failed due to validation errors",
		Fields:  map[string]string{},
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Fields[strings.ToLower(fe.Field())] = "failed on the '" + fe.Tag() + "' rule"
		}
		return out
	}

	out.Message = err.Error()
	return out
}
