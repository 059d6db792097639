package modkit

import "net/http"

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
}

// Build applies Option funcs over defaults and returns a plain struct
func Build(defaults Built, opts ...Option) Built {
	c := buildCfg{name: defaults.Name, prefix: defaults.Prefix, mw: defaults.Mw}
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
	}
}
