// Package requesttime pins one "now" per HTTP request. Everything a request
// computes uses the same timestamp, so a row's computed_at never straddles a
// clock tick.
package requesttime

import (
	"net/http"
	"time"

	"worklens/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
