package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/swaggo/swag/v2"
)

type staticDoc string

func (d staticDoc) ReadDoc() string { return string(d) }

func TestMountSwagger(t *testing.T) {
	get := func(h stdhttp.Handler, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, path, nil))
		return rr
	}

	off := NewServer(":0")
	MountSwagger(off.Router(), false)
	if rr := get(off.Handler(), "/docs/index.html"); rr.Code != stdhttp.StatusNotFound {
		t.Fatalf("disabled docs served %d", rr.Code)
	}

	// nothing registered yet
	on := NewServer(":0")
	MountSwagger(on.Router(), true)
	if rr := get(on.Handler(), "/docs/doc.json"); rr.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("unregistered doc.json = %d", rr.Code)
	}

	swag.Register(swag.Name, staticDoc(`{"swagger":"2.0","info":{"title":"ops"}}`))

	rr := get(on.Handler(), "/docs/doc.json")
	if rr.Code != stdhttp.StatusOK || !strings.Contains(rr.Body.String(), `"title":"ops"`) {
		t.Fatalf("doc.json = %d %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("doc.json content type %q", ct)
	}

	rr = get(on.Handler(), "/docs/index.html")
	if rr.Code != stdhttp.StatusOK || !strings.Contains(rr.Body.String(), "swagger-ui") {
		t.Fatalf("index.html = %d", rr.Code)
	}
}
