// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "oncallbot/internal/platform/net/http"
)

// Module defines the minimal contract used by modkit
// kept as a sibling package to avoid import knots when a module also exports its own ports type
type Module interface {
	// MountRoutes mounts ops HTTP routes; modules without routes do nothing
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set for cross wiring
	Ports() any
	// Name returns the module name
	Name() string
}
