// Package modkit provides module wiring and core deps
package modkit

import (
	"oncallbot/internal/modkit/repokit"
	"oncallbot/internal/platform/config"
	"oncallbot/internal/platform/logger"
	"oncallbot/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	DB  repokit.TxRunner

	// Driver names the SQL dialect behind DB so repos can pick their DDL
	Driver store.Driver
}

// Named returns a copy of Deps whose logger carries a component field
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}
