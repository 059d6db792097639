package main

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"oncallbot/internal/core/version"
	"oncallbot/internal/modkit"
	perr "oncallbot/internal/platform/errors"
	phttp "oncallbot/internal/platform/net/http"
	"oncallbot/internal/platform/net/middleware"
)

type guarder interface {
	Guard(context.Context) error
}

// opsOptions configures the ops server
type opsOptions struct {
	Addr    string
	Swagger bool
}

// ReadyResponse is the readiness payload
type ReadyResponse struct {
	Store string `json:"store" example:"ok"`
}

type ops struct {
	st guarder
}

// newOpsServer builds the health and inspection server
func newOpsServer(o opsOptions, st guarder, mods ...modkit.Module) *phttp.Server {
	srv := phttp.NewServer(o.Addr, func(m *chi.Mux) {
		m.Use(middleware.RequestID())
		m.Use(middleware.RealIP())
		m.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
		m.Use(middleware.RecoverJSON)
		m.Use(middleware.NoCache())
	})
	r := srv.Router()
	h := &ops{st: st}

	r.Get("/healthz", h.health)
	phttp.GetJSON(r, "/readyz", h.ready)
	phttp.GetJSON(r, "/version", h.version)
	phttp.MountSwagger(r, o.Swagger)

	modkit.Mount(r, mods...)
	return srv
}

// swagger:route GET /healthz Ops opsHealth
// @Summary Liveness check
// @Tags Ops
// @Success 204
// @Router /healthz [get]
func (h *ops) health(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	w.WriteHeader(stdhttp.StatusNoContent)
}

// swagger:route GET /readyz Ops opsReady
// @Summary Readiness check, pings the link store
// @Tags Ops
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} http.Envelope
// @Router /readyz [get]
func (h *ops) ready(req *stdhttp.Request) (any, error) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()
	if err := h.st.Guard(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "store unavailable")
	}
	return ReadyResponse{Store: "ok"}, nil
}

// swagger:route GET /version Ops opsVersion
// @Summary Build and version info
// @Tags Ops
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /version [get]
func (h *ops) version(*stdhttp.Request) (any, error) {
	return version.Info(), nil
}
