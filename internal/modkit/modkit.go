package modkit

import (
	"oncallbot/internal/modkit/module"
	phttp "oncallbot/internal/platform/net/http"
)

// Module is the common surface for modules that can mount ops routes and expose ports
type Module = module.Module

// Mount mounts every module under its own router; a module with a prefix gets a subroute
func Mount(r phttp.Router, mods ...Module) {
	for _, m := range mods {
		if m == nil {
			continue
		}
		p, ok := m.(interface{ Prefix() string })
		if !ok || p.Prefix() == "" {
			m.MountRoutes(r)
			continue
		}
		r.Route(p.Prefix(), m.MountRoutes)
	}
}
