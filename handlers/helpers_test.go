package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/friendly-matches/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		kind     string
		message  string
		retryHdr string
	}{
		{"not found", services.ErrMatchNotFound, http.StatusNotFound, "not_found", services.ErrMatchNotFound.Error(), ""},
		{"conflict", services.ErrAlreadyEnrolled, http.StatusConflict, "conflict", services.ErrAlreadyEnrolled.Error(), ""},
		{"invalid input", services.ErrInvalidGender, http.StatusBadRequest, "invalid_input", services.ErrInvalidGender.Error(), ""},
		{"forbidden", services.ErrNotOrganizer, http.StatusForbidden, "forbidden", services.ErrNotOrganizer.Error(), ""},
		{
			"precondition with detail",
			fmt.Errorf("%w: match 4 \"Cup\"", services.ErrScheduleConflict),
			http.StatusUnprocessableEntity, "precondition_failed",
			services.ErrScheduleConflict.Error() + ": match 4 \"Cup\"", "",
		},
		{
			"transient hides cause",
			fmt.Errorf("%w: update match status: %w", services.ErrTransient, errors.New("pq: connection reset")),
			http.StatusServiceUnavailable, "transient", services.ErrTransient.Error(), "5",
		},
		{"deadline exceeded", context.DeadlineExceeded, http.StatusServiceUnavailable, "transient", services.ErrTransient.Error(), "5"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/1", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.retryHdr, rec.Header().Get("Retry-After"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body["kind"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
			assert.NotContains(t, body["error"], "pq:")
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Reason string `json:"reason"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"reason":"no show"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"reason":`, "badly-formed JSON"},
		{"wrong type", `{"reason":5}`, `incorrect JSON type for field "reason"`},
		{"unknown field", `{"reason":"x","score":1}`, `unknown key "score"`},
		{"two values", `{"reason":"x"}{"reason":"y"}`, "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := readJSON(rec, req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "no show", dst.Reason)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	ok := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	ok.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))
	rec = httptest.NewRecorder()
	down.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, retryAfterSeconds, rec.Header().Get("Retry-After"))
}
