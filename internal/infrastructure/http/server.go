package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/godaily/godaily/internal/infrastructure/http/handler"
	mw "github.com/godaily/godaily/internal/infrastructure/http/middleware"
)

// Fallbacks for zero or negative ServerConfig fields. An empty host listens on
// every interface.
const (
	DefaultHost              = ""
	DefaultPort              = "8000"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20
	DefaultMaxBodyBytes      = 64 << 10
)

// ServerConfig tunes the GoDaily API listener. Task request bodies are capped
// at MaxBodyBytes.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	fallback(&cfg.ReadTimeout, DefaultReadTimeout)
	fallback(&cfg.WriteTimeout, DefaultWriteTimeout)
	fallback(&cfg.IdleTimeout, DefaultIdleTimeout)
	fallback(&cfg.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	fallback(&cfg.MaxHeaderBytes, DefaultMaxHeaderBytes)
	fallback(&cfg.MaxBodyBytes, DefaultMaxBodyBytes)
}

func fallback[T int | int64 | time.Duration](v *T, def T) {
	if *v <= 0 {
		*v = def
	}
}

// APIServer serves the GoDaily task API.
type APIServer struct {
	server *http.Server
}

// NewAPIServer mounts /health, /auth and /tasks behind OpenTelemetry
// instrumentation.
func NewAPIServer(tasks *handler.TaskHandler, validator mw.KeyValidator, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	h := otelhttp.NewHandler(setupRouter(tasks, validator, cfg), "godaily-api")
	return &APIServer{server: setupHTTPServer(h, cfg)}
}

func setupRouter(tasks *handler.TaskHandler, validator mw.KeyValidator, cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		mw.MaxBodyBytes(cfg.MaxBodyBytes),
	)

	r.Get("/health", health)
	tasks.Mount(r, mw.NewAuth(validator))
	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		slog.ErrorContext(r.Context(), "write health response", "error", err)
	}
}

func setupHTTPServer(h http.Handler, cfg ServerConfig) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Start blocks serving requests until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *APIServer) Start() error {
	slog.Info("godaily api listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests until
// ctx expires.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.Info("godaily api shutting down")
	return s.server.Shutdown(ctx)
}

// Handler returns the instrumented router.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
