package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emsnav/internal/buildinfo"
	"emsnav/internal/dispatch"
	"emsnav/internal/metrics"
	"emsnav/internal/model"
)

// DispatchHandler handles POST /v1/dispatch: run the exact planner over the
// road graph, persist the winning plan, and fan out plan.created.
func (s *Server) DispatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.CanDispatch() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req model.DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateDispatchRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid dispatch request", err.Error(), r.URL.Path)
		return
	}
	vehicles := req.Vehicles
	if vehicles == 0 {
		vehicles = s.Cfg.Fleet.Vehicles
	}
	depot, incidents, err := s.resolveNodes(&req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Unknown location", err.Error(), r.URL.Path)
		return
	}

	planner := dispatch.NewPlanner(s.Oracle, s.plannerConfig(req.Options))
	start := time.Now()
	plan, err := planner.Plan(r.Context(), depot, incidents, vehicles)
	if err != nil {
		outcome := writePlannerProblem(w, err, r.URL.Path)
		metrics.PlansTotal.WithLabelValues(outcome).Inc()
		return
	}
	elapsed := time.Since(start)

	tours := make([]model.VehicleTour, len(plan.Tours))
	for i, t := range plan.Tours {
		tours[i] = model.VehicleTour{Vehicle: i, Stops: t.Stops, Path: t.Path, CostM: t.Cost}
	}
	saved, err := s.Store.CreatePlan(r.Context(), model.DispatchPlan{
		Depot:      plan.Depot,
		Incidents:  plan.Incidents,
		Vehicles:   vehicles,
		Tours:      tours,
		TotalCostM: plan.TotalCost,
		Evaluated:  plan.Evaluated,
		ElapsedMs:  elapsed.Milliseconds(),
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save plan failed", err.Error(), r.URL.Path)
		return
	}

	metrics.PlansTotal.WithLabelValues("ok").Inc()
	metrics.PlanDuration.Observe(elapsed.Seconds())
	metrics.PartitionsEvaluated.Add(float64(plan.Evaluated))
	stats := s.Oracle.Stats()
	metrics.OracleCacheHits.Set(float64(stats.Hits))
	metrics.OracleCacheMisses.Set(float64(stats.Misses))

	s.Broker.Publish(saved.ID, SSEEvent{Type: "plan.created", Data: map[string]any{"planId": saved.ID, "totalCostM": saved.TotalCostM}})
	s.Pub.Emit(r.Context(), "plan.created", saved)
	writeJSON(w, http.StatusCreated, saved)
}

// resolveNodes maps the request onto road-network node ids, snapping
// coordinates to their nearest node and rejecting ids the graph lacks.
func (s *Server) resolveNodes(req *model.DispatchRequest) (int64, []int64, error) {
	depot := req.Depot
	if req.DepotLocation != nil {
		id, err := s.Graph.NearestNode(req.DepotLocation.Lat, req.DepotLocation.Lng)
		if err != nil {
			return 0, nil, err
		}
		depot = id
	} else if !s.Graph.HasNode(depot) {
		return 0, nil, fmt.Errorf("unknown depot node %d", depot)
	}
	incidents := make([]int64, 0, len(req.Incidents)+len(req.IncidentLocations))
	for _, id := range req.Incidents {
		if !s.Graph.HasNode(id) {
			return 0, nil, fmt.Errorf("unknown incident node %d", id)
		}
		incidents = append(incidents, id)
	}
	for _, loc := range req.IncidentLocations {
		id, err := s.Graph.NearestNode(loc.Lat, loc.Lng)
		if err != nil {
			return 0, nil, err
		}
		incidents = append(incidents, id)
	}
	return depot, incidents, nil
}

// PlansIndexHandler handles GET /v1/plans
func (s *Server) PlansIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListPlans(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler handles GET /v1/plans/{id} and the stream subpaths
// /v1/plans/{id}/events/stream (SSE) and /v1/plans/{id}/track/ws.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/plans/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
		s.planEventsSSE(w, r, id)
		return
	}
	if len(parts) > 2 && parts[1] == "track" && parts[2] == "ws" {
		s.TrackStreamHandler(w, r, id)
		return
	}
	if len(parts) > 1 {
		writeProblem(w, http.StatusNotFound, "Not Found", "", path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	plan, err := s.Store.GetPlan(r.Context(), id)
	if err != nil {
		writePlannerProblem(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) planEventsSSE(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.Store.GetPlan(r.Context(), id); err != nil {
		writePlannerProblem(w, err, r.URL.Path)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	// initial heartbeat
	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"planId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()
	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt, ok := <-ch:
			if !ok {
				// broker tore the subscription down, e.g. connection loss
				return
			}
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"planId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p := s.getPrincipal(r)
		if !p.IsAdmin() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
			return
		}
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateSubscriptionRequest(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", err.Error(), r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListSubscriptions(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		writePlannerProblem(w, err, r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz: the service is ready once the store
// answers and a road graph is loaded.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "store unavailable"})
		return
	}
	if s.Graph == nil || s.Graph.NodeCount() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "graph not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// MetricsHandler serves the dedicated Prometheus registry.
func (s *Server) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
