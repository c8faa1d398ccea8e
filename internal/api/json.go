package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"emsnav/internal/dispatch"
	"emsnav/internal/store"
)

// Problem represents an RFC7807 problem details response body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	writeJSON(w, status, Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// writePlannerProblem maps planner errors onto problem responses. Bad input
// is 400; a well-formed request over a disconnected network is 422.
func writePlannerProblem(w http.ResponseWriter, err error, instance string) string {
	switch {
	case errors.Is(err, dispatch.ErrInvalidVehicleCount):
		writeProblem(w, http.StatusBadRequest, "Invalid vehicle count", err.Error(), instance)
		return "invalid"
	case errors.Is(err, dispatch.ErrEmptyIncidentSet):
		writeProblem(w, http.StatusBadRequest, "Empty incident set", err.Error(), instance)
		return "invalid"
	case errors.Is(err, dispatch.ErrUnreachableNodes):
		writeProblem(w, http.StatusUnprocessableEntity, "Unreachable nodes", err.Error(), instance)
		return "unreachable"
	case errors.Is(err, store.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error(), instance)
		return "not_found"
	default:
		writeProblem(w, http.StatusInternalServerError, "Dispatch failed", err.Error(), instance)
		return "error"
	}
}
