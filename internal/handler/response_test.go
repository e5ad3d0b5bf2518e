package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/domain"
)

func TestErrorMapsAppErrorCode(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, domain.ErrNotFound("job not found"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "job not found"}`, rr.Body.String())
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, errors.New("pq: syntax error at or near"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error": "internal server error"}`, rr.Body.String())
}

func TestJSONSurvivesUnencodableValue(t *testing.T) {
	SetLogger(zap.NewNop())

	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]any{"bad": func() {}})

	// Status is already committed; the failure is logged, not panicked.
	assert.Equal(t, http.StatusOK, rr.Code)
}
