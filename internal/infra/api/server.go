package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"consulting-portal/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Send-whatsapp callers get this many requests per window.
const (
	sendWhatsAppLimit  = 30
	sendWhatsAppWindow = time.Minute
)

type Deps struct {
	Checkout  *CheckoutHandler
	Webhook   *WebhookHandler
	Functions *FunctionsHandler
	Limiter   Limiter // optional
	Proxies   ProxyTrust
	Logger    *zerolog.Logger
}

// NewRouter mounts every route behind the shared middleware chain.
func NewRouter(cfg config.HTTPConfig, d Deps) http.Handler {
	r := chi.NewRouter()
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(
		TraceID(),
		RequestLog(d.Logger),
		Recover(d.Logger),
		CORS(cfg.AllowedOrigins),
		Timeout(timeout),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if d.Checkout != nil {
		d.Checkout.Register(r)
	}
	if d.Webhook != nil {
		d.Webhook.Register(r)
	}
	if d.Functions != nil {
		var limit Middleware
		if d.Limiter != nil {
			limit = RateLimit(d.Limiter, "send-whatsapp", sendWhatsAppLimit, sendWhatsAppWindow, d.Proxies, d.Logger)
		}
		d.Functions.Register(r, limit)
	}
	return r
}

type Server struct {
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger,
	}
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
