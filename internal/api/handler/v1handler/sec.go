package v1handler

import (
	"crypto/subtle"
	"net/http"

	"mrzreader/pkg/serrors"
)

// APIKeyHeader is the request header carrying the static API key.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey guards the wrapped handler with a static API key check. An
// empty configured key disables the check entirely, the development default.
func RequireAPIKey(next http.Handler, key string) http.Handler {
	if key == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			writeError(r.Context(), w, serrors.With(serrors.ErrUnauthorized, "missing or invalid api key"))

			return
		}

		next.ServeHTTP(w, r)
	})
}
