package model

// Wire types shared by the API, store, and webhook payloads.

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DispatchRequest asks for an optimal fleet assignment. The depot and each
// incident may be given either as a road-network node id or as a coordinate
// that is snapped to the nearest node; coordinates win when both are present.
type DispatchRequest struct {
	Depot             int64            `json:"depot,omitempty"`
	DepotLocation     *GeoPoint        `json:"depotLocation,omitempty"`
	Incidents         []int64          `json:"incidents,omitempty"`
	IncidentLocations []GeoPoint       `json:"incidentLocations,omitempty"`
	Vehicles          int              `json:"vehicles"`
	Options           *DispatchOptions `json:"options,omitempty"`
}

type DispatchOptions struct {
	ReturnToDepot  bool `json:"returnToDepot,omitempty"`
	DedupeVehicles bool `json:"dedupeVehicles,omitempty"`
	AllowEmpty     bool `json:"allowEmpty,omitempty"`
}

// VehicleTour is one vehicle's share of a plan. Path is the node-level
// polyline starting at the depot; an idle vehicle has no stops and a
// single-node path.
type VehicleTour struct {
	Vehicle int     `json:"vehicle"`
	Stops   []int64 `json:"stops"`
	Path    []int64 `json:"path"`
	CostM   float64 `json:"costM"`
}

// DispatchPlan is a persisted planning result.
type DispatchPlan struct {
	ID         string        `json:"id"`
	Depot      int64         `json:"depot"`
	Incidents  []int64       `json:"incidents"`
	Vehicles   int           `json:"vehicles"`
	Tours      []VehicleTour `json:"tours"`
	TotalCostM float64       `json:"totalCostM"`
	Evaluated  uint64        `json:"partitionsEvaluated"`
	ElapsedMs  int64         `json:"elapsedMs"`
	CreatedAt  string        `json:"createdAt"`
}

type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}

// TrackPoint is one frame of a vehicle position stream along a tour path.
type TrackPoint struct {
	PlanID   string    `json:"planId"`
	Vehicle  int       `json:"vehicle"`
	Seq      int       `json:"seq"`
	Node     int64     `json:"node"`
	Location *GeoPoint `json:"location,omitempty"`
	TS       string    `json:"ts"`
}
