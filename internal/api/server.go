package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/vietddude/paygate/internal/auth"
	"github.com/vietddude/paygate/internal/core/domain"
	"github.com/vietddude/paygate/internal/payment"
)

const maxBodyBytes = 1 << 20

// PaymentVerifier checks a payment transaction.
type PaymentVerifier interface {
	Verify(ctx context.Context, txHash, chainKey string) (*payment.Result, error)
}

// Options configures the HTTP surface.
type Options struct {
	Port        int
	PayTo       string
	PriceUnits  string
	Chains      []domain.ChainConfig
	Verifier    PaymentVerifier
	Issuer      *auth.Issuer
	CORSOrigins []string
	Log         *slog.Logger
}

// Server serves the public and protected routes.
type Server struct {
	opts   Options
	log    *slog.Logger
	server *http.Server
	ln     net.Listener
}

// NewServer creates a new server.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{opts: opts, log: log.With("component", "api")}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverer)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	r.HandleFunc("/verify", s.handleVerify).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware(s.opts.Issuer, writeError))
	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/tools/rows-to-text", s.handleRowsToText).Methods(http.MethodPost)
	protected.HandleFunc("/tools/pretty", s.handlePretty).Methods(http.MethodPost)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	})
	return c.Handler(r)
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.ln = ln
	s.log.Info("HTTP server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve serves on the listener bound by Listen. It returns
// http.ErrServerClosed after Stop.
func (s *Server) Serve() error {
	if s.ln == nil {
		return errors.New("server is not listening")
	}
	return s.server.Serve(s.ln)
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error("Handler panic",
					"path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "server_error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
