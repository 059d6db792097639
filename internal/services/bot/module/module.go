// Package module wires the command router and exposes it as the event handler
package module

import (
	"context"

	"oncallbot/internal/adapters/slack"
	"oncallbot/internal/modkit"
	phttp "oncallbot/internal/platform/net/http"
	"oncallbot/internal/services/bot/service"
)

// Ports exposed by the bot module
type Ports struct {
	Handler slack.Handler
}

// Module defines the bot module
type Module struct {
	deps   modkit.Deps
	opts   Options
	router *service.Router
	ports  Ports
}

// New constructs the bot module for the identity self
func New(deps modkit.Deps, d service.Deps, self slack.Identity) *Module {
	deps = deps.Named("bot")
	opts := FromConfig(deps.Cfg)
	r := service.NewRouter(d, self, service.Config{
		BotName:  opts.BotName,
		TestUser: opts.TestUser,
	}, deps.Log)

	m := &Module{deps: deps, opts: opts, router: r}
	m.ports = Ports{Handler: r.Handle}
	return m
}

// Welcome greets the default on-call set with the configured message
func (m *Module) Welcome(ctx context.Context) error {
	if m.opts.WelcomeMessage == "" {
		return nil
	}
	if err := m.router.Welcome(ctx, m.opts.WelcomeMessage); err != nil {
		return err
	}
	m.deps.Log.Info().Msg("welcome message sent")
	return nil
}

// Name returns the module name
func (m *Module) Name() string { return "bot" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ phttp.Router) {}
