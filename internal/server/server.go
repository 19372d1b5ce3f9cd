// Package server exposes a session over HTTP and WebSocket.
package server

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"luxury-tycoon/internal/config"
	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/logging"
	"luxury-tycoon/internal/session"
	"luxury-tycoon/internal/store"
	"luxury-tycoon/internal/stream"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server. Session and Hub are required; a nil
// Journal disables /api/journal.
type Options struct {
	Session *session.Session
	Hub     *stream.Hub
	Journal store.Journal
	Config  config.ServerConfig
	Logger  zerolog.Logger
	Version string
}

// Server serves the game API.
type Server struct {
	session  *session.Session
	hub      *stream.Hub
	journal  store.Journal
	cfg      config.ServerConfig
	logger   zerolog.Logger
	version  string
	started  time.Time
	limiter  *rateLimiter
	upgrader websocket.Upgrader
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Session == nil || opts.Hub == nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "server requires a session and a hub")
	}
	return &Server{
		session: opts.Session,
		hub:     opts.Hub,
		journal: opts.Journal,
		cfg:     opts.Config,
		logger:  logging.WithComponent(opts.Logger, "server"),
		version: opts.Version,
		started: time.Now(),
		limiter: newRateLimiter(opts.Config.ActionRate, opts.Config.ActionBurst, nil),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/actions", s.limited(s.handleAction))
	mux.HandleFunc("POST /api/spin", s.limited(s.handleSpin))
	mux.HandleFunc("POST /api/convert", s.limited(s.handleConvert))
	mux.HandleFunc("GET /api/journal", s.handleJournal)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.serveWS)
	return s.logRequests(mux)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	return nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		log := s.logger.With().Str("request_id", id).Logger()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), log)))
		logging.LogRequest(log, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
