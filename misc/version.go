// Package misc keeps build time information.
package misc

import (
	"runtime/debug"
)

var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "blockflow"

func GetAppName() string {
	return appName
}

// GetVersion returns version set at link time or, when it was not, main module
// version recorded by the toolchain.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

func GetGitHash() string {
	if gitHash != "unknown" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) > 0 {
				return s.Value
			}
		}
	}
	return gitHash
}
