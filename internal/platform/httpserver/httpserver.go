package httpserver

import (
	"net/http"
	"time"
)

// New builds the process HTTP server. Read and write timeouts stay modest;
// artifact uploads are bounded at the handler, not here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
