package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"emsnav/internal/model"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// TrackStreamHandler handles GET /v1/plans/{id}/track/ws: replays each
// vehicle's tour as a stream of positions, one frame per path node. The
// frame interval comes from ?intervalMs (default 200). Frames are also
// published to the plan's event channel so SSE watchers see the playback.
func (s *Server) TrackStreamHandler(w http.ResponseWriter, r *http.Request, id string) {
	plan, err := s.Store.GetPlan(r.Context(), id)
	if err != nil {
		writePlannerProblem(w, err, r.URL.Path)
		return
	}
	interval := 200 * time.Millisecond
	if v := r.URL.Query().Get("intervalMs"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 10 {
			interval = time.Duration(n) * time.Millisecond
		}
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Reader goroutine notices the client going away mid-playback.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(1 << 16)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for _, tour := range plan.Tours {
		for seq, node := range tour.Path {
			select {
			case <-r.Context().Done():
				return
			case <-closed:
				return
			case <-ticker.C:
			}
			pt := model.TrackPoint{
				PlanID:  plan.ID,
				Vehicle: tour.Vehicle,
				Seq:     seq,
				Node:    node,
				TS:      time.Now().UTC().Format(time.RFC3339Nano),
			}
			if loc, ok := s.Graph.Node(node); ok {
				pt.Location = &model.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}
			}
			if err := conn.WriteJSON(pt); err != nil {
				return
			}
			s.Broker.Publish(plan.ID, SSEEvent{Type: "track.position", Data: map[string]any{
				"planId": pt.PlanID, "vehicle": pt.Vehicle, "seq": pt.Seq, "node": pt.Node,
			}})
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "playback complete"),
		time.Now().Add(time.Second))
}
