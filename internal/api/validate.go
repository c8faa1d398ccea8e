package api

import (
	"fmt"

	"emsnav/internal/model"
)

// maxIncidents bounds the exact search; the per-group factorial and the M^n
// partition space both explode past this. maxVehicles keeps M^n enumerable
// long before the partition counter's own 64-bit limit.
const (
	maxIncidents = 10
	maxVehicles  = 50
)

func validateDispatchRequest(req *model.DispatchRequest) error {
	if req.Depot == 0 && req.DepotLocation == nil {
		return fmt.Errorf("depot or depotLocation required")
	}
	if req.Vehicles < 0 {
		return fmt.Errorf("vehicles must be >= 0")
	}
	if req.Vehicles > maxVehicles {
		return fmt.Errorf("at most %d vehicles per request, got %d", maxVehicles, req.Vehicles)
	}
	n := len(req.Incidents) + len(req.IncidentLocations)
	if n > maxIncidents {
		return fmt.Errorf("at most %d incidents per request, got %d", maxIncidents, n)
	}
	allowEmpty := req.Options != nil && req.Options.AllowEmpty
	if n == 0 && !allowEmpty {
		return fmt.Errorf("incidents or incidentLocations required")
	}
	return nil
}

func validateSubscriptionRequest(req *model.SubscriptionRequest) error {
	if req.URL == "" {
		return fmt.Errorf("url required")
	}
	if len(req.Events) == 0 {
		return fmt.Errorf("events required")
	}
	return nil
}
