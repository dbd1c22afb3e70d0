package middleware

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

var errNoPool = errors.New("no database connection")

// RequireStorage answers 503 storage_unavailable while available reports
// false, so routes that need the database fail fast when the server was
// started without one.
func RequireStorage(available func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !available() {
				response.Fail(w, r, apperr.StorageUnavailable(errNoPool))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
