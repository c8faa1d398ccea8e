package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"emsnav/internal/api"
	"emsnav/internal/config"
	"emsnav/internal/graph"
	"emsnav/internal/metrics"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	g, err := loadGraph(cfg.GraphPath)
	if err != nil {
		log.Fatalf("graph: %v", err)
	}
	log.Printf("graph loaded nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())

	metrics.RegisterDefault()
	srv, err := api.NewServer(cfg, g)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()

	// Dispatch
	mux.HandleFunc("/v1/dispatch", srv.RateLimited(srv.DispatchHandler))

	// Plans
	mux.HandleFunc("/v1/plans", srv.PlansIndexHandler)
	mux.HandleFunc("/v1/plans/", srv.PlanByIDHandler) // includes /events/stream, /track/ws

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)

	// Health & metrics
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.Handle("/metrics", srv.MetricsHandler())

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Instrument(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	worker := srv.NewWebhookWorker()
	worker.Start()

	log.Printf("API listening on %s", cfg.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// loadGraph reads the road network snapshot; with no path configured a tiny
// built-in network is used so the service comes up for local poking.
func loadGraph(path string) (*graph.Graph, error) {
	if path != "" {
		return graph.LoadFile(path)
	}
	g := graph.New()
	g.AddNode(1, 41.0082, 28.9784)
	g.AddNode(2, 41.0102, 28.9744)
	g.AddNode(3, 41.0151, 28.9795)
	g.AddNode(4, 41.0066, 28.9851)
	for _, e := range []struct {
		a, b int64
		w    float64
	}{
		{1, 2, 480}, {2, 3, 620}, {1, 4, 530}, {3, 4, 900}, {2, 4, 710},
	} {
		if err := g.AddEdge(e.a, e.b, e.w); err != nil {
			return nil, err
		}
	}
	return g, nil
}
