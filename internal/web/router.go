// Package web is the HTTP surface: the share API, the preview image endpoint
// and the server-rendered pages.
package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"jotjot/internal/preview"
	"jotjot/internal/share"
)

// Shares creates and retrieves shared notes.
type Shares interface {
	Create(ctx context.Context, content string) (share.Result, error)
	Get(ctx context.Context, id string) (string, error)
}

// Options configures the router.
type Options struct {
	BaseURL     string
	CORSOrigins []string
	RateLimit   rate.Limit
	RateBurst   int

	// TrustProxyHeaders keys clients on X-Forwarded-For/X-Real-IP instead
	// of the connection address.
	TrustProxyHeaders bool
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	shares   Shares
	renderer preview.Renderer
	baseURL  string
	log      logrus.FieldLogger
}

// NewHandler creates a new Handler instance.
func NewHandler(shares Shares, renderer preview.Renderer, baseURL string, logger logrus.FieldLogger) *Handler {
	return &Handler{
		shares:   shares,
		renderer: renderer,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		log:      logger.WithField("component", "web"),
	}
}

// NewRouter creates and configures the application router.
func NewRouter(h *Handler, opts Options) chi.Router {
	r := chi.NewRouter()

	if opts.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(requestLogger(h.log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	limiter := newRateLimiter(opts.RateLimit, opts.RateBurst, h.log)

	r.Get("/health", healthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(limiter.middleware).Post("/share", h.CreateShare)
		r.Get("/share/{id}", h.GetShare)
		r.Get("/og", h.PreviewImage)
	})

	r.Get("/s/{id}", h.SharedPage)
	r.Get("/", h.EditorPage)

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
