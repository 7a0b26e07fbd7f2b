// Package requestid assigns a correlation ID to every request so log lines
// from one request can be stitched together.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"worklens/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware takes the caller-supplied X-Request-ID when present, generates
// one otherwise, and echoes it back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerName, id)

		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
