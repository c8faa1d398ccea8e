package api

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"emsnav/internal/auth"
	"emsnav/internal/config"
	"emsnav/internal/dispatch"
	"emsnav/internal/graph"
	"emsnav/internal/model"
	"emsnav/internal/store"
	"emsnav/internal/webhooks"
)

type Server struct {
	Store  store.Store
	Pub    *webhooks.Publisher
	Auth   *auth.Verifier
	Broker EventBroker
	Graph  *graph.Graph
	Oracle *dispatch.Oracle
	Cfg    config.Config

	limiter *rate.Limiter
}

// NewServer wires a Server from config. With no databaseUrl the in-memory
// store is used; with no redisUrl the in-process broker is used. The oracle
// is shared across requests so pairwise distances are computed once per
// graph lifetime.
func NewServer(cfg config.Config, g *graph.Graph) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sp.InitSchema(context.Background()); err != nil {
			return nil, err
		}
		s = sp
	}
	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{
		Store:   s,
		Pub:     webhooks.NewPublisher(s),
		Auth:    auth.NewVerifierFromEnv(),
		Broker:  broker,
		Graph:   g,
		Oracle:  dispatch.NewOracle(g),
		Cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate.RPS), cfg.Rate.Burst),
	}, nil
}

// plannerConfig merges service defaults with per-request options.
func (s *Server) plannerConfig(opts *model.DispatchOptions) dispatch.Config {
	pc := dispatch.DefaultConfig()
	pc.ReturnToDepot = s.Cfg.Planner.ReturnToDepot
	pc.Workers = s.Cfg.Planner.Workers
	if opts != nil {
		if opts.ReturnToDepot {
			pc.ReturnToDepot = true
		}
		pc.DedupeVehicles = opts.DedupeVehicles
		pc.EmptyIsError = !opts.AllowEmpty
	}
	return pc
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}
