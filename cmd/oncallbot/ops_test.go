package main

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"oncallbot/internal/modkit"
	"oncallbot/internal/modkit/module"
	phttp "oncallbot/internal/platform/net/http"
	kit "oncallbot/internal/platform/testkit"
)

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

type pingMod struct{}

func (pingMod) Name() string   { return "ping" }
func (pingMod) Ports() any     { return nil }
func (pingMod) Prefix() string { return "/ping" }
func (pingMod) MountRoutes(r phttp.Router) {
	r.Get("/", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte("pong")) })
}

var _ module.Module = pingMod{}

func serve(t *testing.T, h stdhttp.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	return rr
}

func TestOpsServer_Routes(t *testing.T) {
	h := newOpsServer(opsOptions{Addr: ":0"}, guard{}, []modkit.Module{pingMod{}}...).Handler()

	if rr := serve(t, h, "/healthz"); rr.Code != stdhttp.StatusNoContent {
		t.Fatalf("healthz = %d", rr.Code)
	}
	rr := serve(t, h, "/readyz")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("readyz = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"store":"ok"`)

	rr = serve(t, h, "/version")
	kit.MustContain(t, rr.Body.String(), `"service":"oncallbot"`)

	if rr := serve(t, h, "/ping"); rr.Body.String() != "pong" {
		t.Fatalf("module route = %q", rr.Body.String())
	}
}

func TestOpsServer_NotReady(t *testing.T) {
	h := newOpsServer(opsOptions{Addr: ":0"}, guard{err: errors.New("db gone")}).Handler()
	rr := serve(t, h, "/readyz")
	if rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("readyz = %d", rr.Code)
	}
	kit.MustNotContain(t, rr.Body.String(), "db gone")
}

func TestOpsServer_Docs(t *testing.T) {
	h := newOpsServer(opsOptions{Addr: ":0", Swagger: true}, guard{}).Handler()

	rr := serve(t, h, "/docs/doc.json")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("doc.json = %d", rr.Code)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not json: %v", err)
	}
	if doc.Info.Title != "oncallbot ops API" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	for _, p := range []string{"/healthz", "/readyz", "/version", "/links", "/links/{channelID}", "/oncall"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("path %s not documented", p)
		}
	}

	if rr := serve(t, newOpsServer(opsOptions{Addr: ":0"}, guard{}).Handler(), "/docs/index.html"); rr.Code != stdhttp.StatusNotFound {
		t.Fatalf("docs served while disabled: %d", rr.Code)
	}
}
