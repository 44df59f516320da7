package v1handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mrzreader/internal/api/handler/v1handler"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAPIKey(t *testing.T) {
	t.Parallel()

	guarded := v1handler.RequireAPIKey(okHandler(), "sekret")

	t.Run("valid key passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/v1/mrz", nil)
		req.Header.Set(v1handler.APIKeyHeader, "sekret")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/v1/mrz", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/v1/mrz", nil)
		req.Header.Set(v1handler.APIKeyHeader, "guess")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// An empty configured key disables the check, the development default.
func TestRequireAPIKey_Disabled(t *testing.T) {
	t.Parallel()

	open := v1handler.RequireAPIKey(okHandler(), "")

	req := httptest.NewRequest(http.MethodPost, "/v1/mrz", nil)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
