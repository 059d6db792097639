// Package module wires the directory resolver and exposes its ports
package module

import (
	"context"
	"time"

	"oncallbot/internal/modkit"
	phttp "oncallbot/internal/platform/net/http"
	"oncallbot/internal/services/directory/domain"
	"oncallbot/internal/services/directory/service"
)

// Ports exposed by the directory module
type Ports struct {
	Directory domain.Port
}

// Module defines the directory module
type Module struct {
	deps  modkit.Deps
	svc   *service.Resolver
	ports Ports
}

// New constructs the directory module over the chat service src
func New(deps modkit.Deps, src service.Source) *Module {
	deps = deps.Named("directory")
	ttl := deps.Cfg.Prefix("SLACK_").MayDuration("CACHE_INTERVAL", 10*time.Minute)
	svc := service.New(src, ttl, deps.Log)
	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Directory: svc}
	return m
}

// Warm loads the user and channel snapshots
func (m *Module) Warm(ctx context.Context) error { return m.svc.Warm(ctx) }

// Name returns the module name
func (m *Module) Name() string { return "directory" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ phttp.Router) {}
