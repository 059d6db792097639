package module

import "oncallbot/internal/platform/config"

// Options holds configuration settings for the links module
type Options struct {
	// EnsureSchema creates channel_links on startup
	EnsureSchema bool
	// ReadOnlyAPI exposes the GET routes only
	ReadOnlyAPI bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	lc := cfg.Prefix("LINKS_")
	return Options{
		EnsureSchema: lc.MayBool("ENSURE_SCHEMA", true),
		ReadOnlyAPI:  lc.MayBool("READ_ONLY_API", true),
	}
}
