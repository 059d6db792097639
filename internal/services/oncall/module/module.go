// Package module wires schedule resolution and the on-call engine and exposes their ports
package module

import (
	"net/http"

	"oncallbot/internal/adapters/pagerduty"
	"oncallbot/internal/modkit"
	phttp "oncallbot/internal/platform/net/http"
	"oncallbot/internal/services/oncall/domain"
	"oncallbot/internal/services/oncall/service"
)

// Ports exposed by the oncall module
type Ports struct {
	Resolver domain.ResolverPort
	Engine   domain.EnginePort
}

// Module implements the oncall module
type Module struct {
	deps     modkit.Deps
	engine   *service.Engine
	defaults domain.Resolution
	ports    Ports
}

// New constructs the module; a nil api builds a PagerDuty client from config
func New(deps modkit.Deps, links service.LinkReader, api service.Rotation) *Module {
	deps = deps.Named("oncall")
	opts := FromConfig(deps.Cfg)
	if api == nil {
		api = pagerduty.NewClient(pagerduty.Options{BaseURL: opts.BaseURL, Token: opts.Token})
	}
	eng := service.NewEngine(api, service.Config{
		DefaultScheduleIDs: opts.ScheduleIDs,
		FromEmail:          opts.FromEmail,
		CacheTTL:           opts.CacheTTL,
	}, deps.Log)

	resolver := service.NewResolver(links, opts.ScheduleIDs)
	m := &Module{deps: deps, engine: eng, defaults: resolver.Default()}
	m.ports = Ports{Resolver: resolver, Engine: eng}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "oncall" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "/oncall" }

// OnCallView is one row of the default on-call set
type OnCallView struct {
	Level int    `json:"escalation_level" example:"1"`
	User  string `json:"user"             example:"Ada Lovelace"`
	Email string `json:"email"            example:"ada@example.com"`
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	phttp.GetJSON(r, "/", m.current)
}

// swagger:route GET /oncall OnCall oncallCurrent
// @Summary The default on-call set, same data the welcome message goes to
// @Tags OnCall
// @Produce json
// @Success 200 {array} OnCallView
// @Failure 500 {object} http.Envelope "no default schedule configured"
// @Failure 502 {object} http.Envelope "PagerDuty unreachable"
// @Router /oncall [get]
func (m *Module) current(req *http.Request) (any, error) {
	entries, err := m.engine.OnCallsFor(req.Context(), m.defaults)
	if err != nil {
		return nil, err
	}
	out := make([]OnCallView, 0, len(entries))
	for _, e := range entries {
		out = append(out, OnCallView{Level: e.EscalationLevel, User: e.User.Summary, Email: e.User.Email})
	}
	return out, nil
}
