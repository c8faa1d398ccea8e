package dispatch

import "errors"

var (
	// ErrInvalidVehicleCount is returned when a plan is requested for zero or
	// fewer vehicles, or for a fleet so large the partition space cannot be
	// counted in 64 bits.
	ErrInvalidVehicleCount = errors.New("dispatch: invalid vehicle count")

	// ErrUnreachableNodes is returned when the depot or an incident cannot be
	// connected through the road network. The whole request fails; a plan
	// that silently drops an incident is never produced.
	ErrUnreachableNodes = errors.New("dispatch: nodes unreachable")

	// ErrEmptyIncidentSet is returned for a plan request with no incidents
	// unless the planner is configured to allow it.
	ErrEmptyIncidentSet = errors.New("dispatch: empty incident set")
)
