package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// APIError is the JSON error envelope returned by every endpoint.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 error for a specific request field.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field %s: %s", field, reason),
	}
}

// kindStatus maps run failure kinds onto HTTP statuses and codes.
var kindStatus = map[pipeline.ErrorKind]struct {
	status int
	code   string
}{
	pipeline.KindInvalidSource:          {http.StatusBadRequest, "INVALID_SOURCE"},
	pipeline.KindRepositoryNotFound:     {http.StatusNotFound, "REPOSITORY_NOT_FOUND"},
	pipeline.KindAuthenticationRequired: {http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
	pipeline.KindTransportFailure:       {http.StatusBadGateway, "TRANSPORT_FAILURE"},
	pipeline.KindStageFailure:           {http.StatusInternalServerError, "STAGE_FAILURE"},
}

// FromRunError converts a pipeline failure into an APIError.
func FromRunError(err error) *APIError {
	kind := pipeline.KindOf(err)
	m := kindStatus[kind]
	apiErr := &APIError{
		Status:  m.status,
		Code:    m.code,
		Message: "analysis failed",
		Details: err.Error(),
	}
	var re *pipeline.RunError
	if errors.As(err, &re) {
		apiErr.Message = fmt.Sprintf("%s stage failed", re.Stage)
	}
	return apiErr
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders APIError
// envelopes. Usage: e.HTTPErrorHandler = ErrorHandler(logger)
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError
		var runErr *pipeline.RunError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &runErr):
			apiErr = FromRunError(err)
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			logger.Error("unhandled request error", "path", c.Path(), "error", err)
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "INTERNAL_ERROR",
				Message: "an unexpected error occurred",
			}
		}

		if err := c.JSON(apiErr.Status, apiErr); err != nil {
			logger.Warn("writing error response", "error", err)
		}
	}
}
