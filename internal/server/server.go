// Package server is a development backend for the todo REST contract.
// It lets the client run without the production API.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/store"
)

const DefaultAddr = ":8000"

type Options struct {
	Addr        string
	CORSOrigins []string
}

type Server struct {
	store  store.Store
	logger *log.Logger
	opts   Options
}

func New(st store.Store, logger *log.Logger, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:3000"}
	}
	return &Server{store: st, logger: logger, opts: opts}
}

// HTTPServer wraps the router with the same timeouts the API uses in production.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
