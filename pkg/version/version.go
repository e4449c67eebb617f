// Package version holds build metadata for the sqldiff binary.
package version

import (
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Sumatoshi-tech/sqldiff/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const shortCommitLen = 12

// InitBinaryVersion fills unset build metadata from the module build info
// embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" && setting.Value != "" {
				Commit = setting.Value
				if len(Commit) > shortCommitLen {
					Commit = Commit[:shortCommitLen]
				}
			}
		case "vcs.time":
			if Date == "unknown" && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for `sqldiff version`.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
