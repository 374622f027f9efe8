// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	UploadDependencies
	ProfileDependencies
}

// UploadDependencies analyzes uploaded CSV exports.
type UploadDependencies interface {
	Parse(ctx context.Context, filename string, body []byte) (types.Analysis, error)
	Analyze(ctx context.Context, filename string, body []byte) (types.Analysis, error)
	// Submit queues an upload; duplicate reports a body seen before.
	Submit(ctx context.Context, filename string, body []byte) (job types.Job, duplicate bool, err error)
	Job(id string) (types.Job, error)
}

// ProfileDependencies reads and removes stored profiles.
type ProfileDependencies interface {
	Profile(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	uploadHandler  *UploadHandler
	profileHandler *ProfileHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxUploadBytes int64
	version        string
	log            logger.Logger
}

// WithMaxUploadBytes caps the CSV part of an upload.
func WithMaxUploadBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// WithVersion sets the version reported by the health endpoints.
func WithVersion(v string) Option {
	return func(o *serverOptions) {
		if v != "" {
			o.version = v
		}
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{
		maxUploadBytes: defaultMaxUploadBytes,
		version:        serviceVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("http")
	}
	return &Server{
		healthHandler:  NewHealthHandler(o.version),
		statsHandler:   NewStatsHandler(statsProvider),
		uploadHandler:  NewUploadHandler(deps, o.maxUploadBytes, o.log),
		profileHandler: NewProfileHandler(deps, o.log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.healthHandler.HandleHealth, "root"))
	mux.HandleFunc("GET /health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /parse", MetricsMiddleware(s.uploadHandler.HandleParse, "parse"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.uploadHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /uploads", MetricsMiddleware(s.uploadHandler.HandleSubmit, "uploads"))
	mux.HandleFunc("GET /uploads/{id}", MetricsMiddleware(s.uploadHandler.HandleGetJob, "upload"))

	mux.HandleFunc("GET /profiles/{id}", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("DELETE /profiles/{id}", MetricsMiddleware(s.profileHandler.HandleDeleteProfile, "profile"))
}
