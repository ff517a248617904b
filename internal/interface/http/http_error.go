package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/airquality-advisor/pkg/errors"
)

// HTTPError is the transport form of a failure: status plus the {"code","message"} body.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type codeMapping struct {
	status int
	code   string
}

// domainStatuses maps service error codes onto the public status and code.
var domainStatuses = map[string]codeMapping{
	"invalid_input":           {http.StatusBadRequest, "invalid_request"},
	"location_not_found":      {http.StatusNotFound, "location_not_found"},
	"air_quality_unavailable": {http.StatusBadGateway, "air_quality_unavailable"},
	"report_not_found":        {http.StatusNotFound, "report_not_found"},
}

// domainError converts a service error. Unknown codes become a 500 carrying fallbackCode.
func domainError(err error, fallbackCode string) *HTTPError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if m, ok := domainStatuses[appErr.Code]; ok {
			return NewHTTPError(m.status, m.code, appErr.Message, err)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, fallbackCode, apperrors.UserMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
