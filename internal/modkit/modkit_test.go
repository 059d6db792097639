package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"oncallbot/internal/platform/logger"
	phttp "oncallbot/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type routed struct {
	name, prefix string
}

func (r routed) Name() string   { return r.name }
func (r routed) Prefix() string { return r.prefix }
func (r routed) Ports() any     { return nil }
func (r routed) MountRoutes(rt phttp.Router) {
	rt.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(r.name)) })
}

type plain struct{}

func (plain) Name() string { return "plain" }
func (plain) Ports() any   { return nil }
func (plain) MountRoutes(rt phttp.Router) {
	rt.Get("/plain", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func TestMount_PrefixAndPlain(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), routed{name: "links", prefix: "/links"}, plain{}, nil)

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/links/ping", nil))
	if rr.Code != 200 || rr.Body.String() != "links" {
		t.Fatalf("prefixed route => %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("plain route => %d", rr.Code)
	}
}

func TestBuild_DefaultsAndOverrides(t *testing.T) {
	mw := func(next http.Handler) http.Handler { return next }

	b := Build(Built{Name: "links", Prefix: "/links"})
	if b.Name != "links" || b.Prefix != "/links" || len(b.Mw) != 0 {
		t.Fatalf("defaults not kept: %+v", b)
	}

	src := []func(http.Handler) http.Handler{mw}
	b = Build(Built{Name: "links", Prefix: "/links"}, WithPrefix("/admin/links"), WithName("l"), WithMiddlewares(src...))
	if b.Name != "l" || b.Prefix != "/admin/links" || len(b.Mw) != 1 {
		t.Fatalf("overrides not applied: %+v", b)
	}
	src[0] = nil
	if b.Mw[0] == nil {
		t.Fatalf("Built.Mw must be a copy")
	}
}

func TestDeps_Named(t *testing.T) {
	d := Deps{Log: logger.Nop()}
	n := d.Named("links")
	if n.DB != nil {
		t.Fatalf("Named should not touch DB")
	}
}
