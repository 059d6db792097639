// Package version provides information about the build version of the bot.
package version

import "runtime/debug"

// Name is the product name reported by the version command
const Name = "oncallbot"

// BuildInfo holds version information about the bot build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags; a module build without
// them falls back to the main module version.
func Info() BuildInfo {
	// Set via -ldflags "-X 'oncallbot/internal/core/version.version=v1.2.0'
	// -X 'oncallbot/internal/core/version.commit=abcd' -X 'oncallbot/internal/core/version.date=2025-09-02'"
	v := version
	if v == "dev" {
		if bi, ok := readBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return BuildInfo{
		Service: Name,
		Version: v,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	readBuildInfo = debug.ReadBuildInfo
)
