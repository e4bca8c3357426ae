// Package version reports the build identity of the quack binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are injected at build time via -ldflags. Left empty, they
// fall back to the module and VCS stamps recorded by the Go toolchain.
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

// Info is the resolved build identity.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
}

// Get resolves the build identity.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildDate: BuildDate}

	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String returns a human-readable version string.
func String() string {
	info := Get()
	return fmt.Sprintf("quack %s (%s, %s)", info.Version, info.Commit, info.BuildDate)
}
