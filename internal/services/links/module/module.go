// Package module wires the channel links service and exposes its ports
package module

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"oncallbot/internal/modkit"
	perr "oncallbot/internal/platform/errors"
	phttp "oncallbot/internal/platform/net/http"
	"oncallbot/internal/services/links/domain"
	"oncallbot/internal/services/links/repo"
	"oncallbot/internal/services/links/service"
)

// Ports exposed by the links module
type Ports struct {
	Links domain.Port
}

// Module implements the links service module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Svc
	ports Ports
}

// New constructs the links module on deps.DB
func New(deps modkit.Deps) *Module {
	deps = deps.Named("links")
	svc := service.New(deps, repo.New(deps.Driver))
	m := &Module{deps: deps, opts: FromConfig(deps.Cfg), svc: svc}
	m.ports = Ports{Links: svc}
	return m
}

// Start prepares storage; call once before serving events
func (m *Module) Start(ctx context.Context) error {
	if !m.opts.EnsureSchema {
		return nil
	}
	return m.svc.EnsureSchema(ctx)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "links" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "/links" }

// RemoveResponse reports whether a DELETE removed a link
type RemoveResponse struct {
	Changed bool `json:"changed" example:"true"`
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	phttp.GetJSON(r, "/", m.list)
	phttp.GetJSON(r, "/{channelID}", m.get)
	if m.opts.ReadOnlyAPI {
		return
	}
	r.Delete("/{channelID}", phttp.JSONHandlerNoBody(m.remove))
}

// swagger:route GET /links Links linksList
// @Summary List channel links ordered by channel name
// @Tags Links
// @Produce json
// @Success 200 {array} domain.Link
// @Router /links [get]
func (m *Module) list(req *http.Request) (any, error) {
	return m.svc.List(req.Context())
}

// swagger:route GET /links/{channelID} Links linksGet
// @Summary The schedule linked to one channel
// @Tags Links
// @Produce json
// @Param channelID path string true "chat channel id"
// @Success 200 {object} domain.Link
// @Failure 404 {object} http.Envelope
// @Router /links/{channelID} [get]
func (m *Module) get(req *http.Request) (any, error) {
	l, ok, err := m.svc.Get(req.Context(), chi.URLParam(req, "channelID"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("channel not linked")
	}
	return l, nil
}

// swagger:route DELETE /links/{channelID} Links linksRemove
// @Summary Unlink a channel; mounted only when LINKS_READ_ONLY_API=false
// @Tags Links
// @Produce json
// @Param channelID path string true "chat channel id"
// @Success 200 {object} RemoveResponse
// @Router /links/{channelID} [delete]
func (m *Module) remove(req *http.Request) (any, error) {
	changed, err := m.svc.Remove(req.Context(), chi.URLParam(req, "channelID"))
	if err != nil {
		return nil, err
	}
	return RemoveResponse{Changed: changed}, nil
}
