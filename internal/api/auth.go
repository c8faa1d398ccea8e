// Package api implements HTTP handlers and helpers for the emsnav service.
package api

import (
	"net/http"
	"strings"
)

type Principal struct {
	Role    string // admin, dispatcher, viewer
	Subject string
}

// getPrincipal extracts the caller's role from a bearer token or headers.
// - If Authorization: Bearer is present, uses the configured verifier.
// - Else falls back to the X-Role header for dev.
func (s *Server) getPrincipal(r *http.Request) Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return Principal{Role: pr.Role, Subject: pr.Subject}
		}
	}
	role := r.Header.Get("X-Role")
	if role == "" {
		role = "admin"
	}
	return Principal{Role: strings.ToLower(role)}
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// CanDispatch reports whether the principal may request plans.
func (p Principal) CanDispatch() bool { return p.Role == "admin" || p.Role == "dispatcher" }
