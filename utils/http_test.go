package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"message": "test"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Topic string `json:"topic"`
	}

	t.Run("decodes a single object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"topic":"kickoff","extra":1}`))
		var dst body
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
		assert.Equal(t, "kickoff", dst.Topic)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst body
		err := DecodeJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"topic":`))
		var dst body
		assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	})

	t.Run("trailing data", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"topic":"a"}{"topic":"b"}`))
		var dst body
		assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"topic":"` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var dst body
		assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &dst))
	})
}

func TestWriteHelpers(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Invalid request body", nil) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Invalid request body",
		},
		{
			name:        "unauthorized default message",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantError:   "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "not found default message",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "Resource not found",
		},
		{
			name:        "bad gateway",
			write:       func(w http.ResponseWriter) error { return WriteBadGateway(w, "", nil) },
			wantStatus:  http.StatusBadGateway,
			wantError:   "bad_gateway",
			wantMessage: "Upstream provider error",
		},
		{
			name:        "service unavailable",
			write:       func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "AI disabled") },
			wantStatus:  http.StatusServiceUnavailable,
			wantError:   "service_unavailable",
			wantMessage: "AI disabled",
		},
		{
			name:        "internal error default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status    int
		wantError string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusNotFound, "not_found"},
		{http.StatusMethodNotAllowed, "method_not_allowed"},
		{http.StatusBadGateway, "bad_gateway"},
		{http.StatusServiceUnavailable, "service_unavailable"},
		{http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.status, "msg", map[string]interface{}{"k": "v"}))

			assert.Equal(t, tt.status, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, "v", response.Details["k"])
		})
	}
}
