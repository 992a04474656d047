package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFromRunErrorPlainError(t *testing.T) {
	apiErr := FromRunError(errors.New("unexpected"))

	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "STAGE_FAILURE", apiErr.Code)
	assert.Equal(t, "analysis failed", apiErr.Message)
}

func TestNewBadRequestError(t *testing.T) {
	err := NewBadRequestError("bad", errors.New("cause"))
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "cause", err.Details)
	assert.Equal(t, "BAD_REQUEST: bad", err.Error())
}
