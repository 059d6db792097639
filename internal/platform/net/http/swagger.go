package http

import (
	stdhttp "net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag/v2"

	perr "oncallbot/internal/platform/errors"
)

// MountSwagger mounts the swagger UI under /docs if enabled by caller
// doc.json is read from the swag registry; main imports the generated docs package to fill it
func MountSwagger(r Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/docs/doc.json", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			RespondError(w, req, perr.Wrap(err, perr.ErrorCodeUnavailable, "api docs are not registered"))
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(doc))
	})
	r.Get("/docs/*", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		httpSwagger.WrapHandler(w, req)
	})
}
