// Package httpserver builds the serving half of the statistics API. Every
// response is a small JSON aggregate, never a stream, so the timeouts are
// tight: a request that outlives them is a stuck client, not a slow query.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an *http.Server for the given address and router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
