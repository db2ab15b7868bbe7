// Package httpapi serves the authentication REST API over gorilla/mux.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type Server struct {
	address   string
	users     *users.Service
	logger    logging.Logger
	handler   http.Handler
	faultsMu  sync.Mutex
	faults    map[string][]int
	listening chan string
}

func NewServer(a string, l logging.Logger, us *users.Service) *Server {
	s := &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		faults:    make(map[string][]int),
		listening: make(chan string, 1),
	}
	s.handler = s.router()
	return s
}

// Handler returns the API for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listening yields the bound address once Run has started accepting.
func (s *Server) Listening() <-chan string {
	return s.listening
}

// InjectFault makes the next len(statuses) requests to path fail with the
// given statuses, in order, before reaching the handler.
func (s *Server) InjectFault(path string, statuses ...int) {
	s.faultsMu.Lock()
	s.faults[path] = append(s.faults[path], statuses...)
	s.faultsMu.Unlock()
}

func (s *Server) nextFault(path string) int {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()

	q := s.faults[path]
	if len(q) == 0 {
		return 0
	}
	s.faults[path] = q[1:]
	return q[0]
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	s.listening <- listen.Addr().String()

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
