// Package version exposes build metadata for the running binary.
package version

import (
	"runtime/debug"
	"strings"
)

// Overridden via -ldflags on release builds.
var (
	// Version is the semantic version of this build.
	Version = "0.0.0-dev"

	// Revision is the VCS revision of this build.
	Revision = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = strings.TrimPrefix(v, "v")
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			Revision = s.Value
		}
	}
}
