package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the header carrying the shared key on protected routes.
const APIKeyHeader = "x-api-key"

// APIKey enforces a static shared key on protected endpoints. An empty
// configured key disables auth, which is only acceptable in local development.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			presented := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
