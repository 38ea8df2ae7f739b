package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"namearchive/internal/config"
	"namearchive/internal/logging"
	"namearchive/internal/namestore"
	"namearchive/internal/ogcache"
	"namearchive/internal/resolve"
	"namearchive/internal/router"
)

// Server serves the archive API over HTTP.
type Server struct {
	bind     string
	logger   *slog.Logger
	store    *namestore.Store
	resolver *resolve.Resolver
	previews *ogcache.Cache
	router   *router.Router

	listener net.Listener
	server   *http.Server
	started  time.Time
	stopOnce sync.Once
}

// New wires the route table over the shared store, resolver and preview
// cache.
func New(cfg *config.Config, store *namestore.Store, resolver *resolve.Resolver, previews *ogcache.Cache, logger *slog.Logger) *Server {
	s := &Server{
		bind:     cfg.Paths.Bind,
		logger:   logging.NewComponentLogger(logger, "server"),
		store:    store,
		resolver: resolver,
		previews: previews,
		router:   router.New(),
		started:  time.Now(),
	}

	s.router.Register(http.MethodGet, "/data/:name", s.handleName)
	s.router.Register(http.MethodGet, "/data", s.handleBulk)
	s.router.Register(http.MethodGet, "/preview/:image", s.handlePreview)
	s.router.Register(http.MethodGet, "/status", s.handleStatus)

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// ServeHTTP tags every request with an ID and dispatches it through the
// route table.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	handled := s.router.Dispatch(w, r)
	if !handled {
		s.writeError(w, http.StatusNotFound, "Not found", "")
	}
	s.logger.Debug("request served",
		logging.String("request_id", requestID),
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Bool("routed", handled),
		logging.Duration("elapsed", time.Since(start)))
}

// Start begins listening on the configured bind address. The server shuts
// down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.bind, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and closes the listener. It is safe to call
// more than once and from concurrent goroutines; shutdown runs a single time.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(shutdownCtx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
			s.listener = nil
		}
	})
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, details string) {
	s.writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// clientIdentity picks the rate-limit identity for a request: the first
// X-Forwarded-For hop when present, otherwise the remote host.
func clientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
