// Package buildinfo carries the depview version stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/depview/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/depview/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Unstamped builds fall back to the module version and VCS settings
// recorded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var resolveOnce sync.Once

func resolve() {
	resolveOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "none" && len(s.Value) >= 7:
				Commit = s.Value[:7]
			case s.Key == "vcs.time" && Date == "unknown":
				Date = s.Value
			}
		}
	})
}

// String returns a multi-line description of the build.
func String() string {
	resolve()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	resolve()
	return fmt.Sprintf("{{.Name}} version %s (%s, %s)\n", Version, Commit, Date)
}

// UserAgent is sent by the HTTP fetcher.
func UserAgent() string {
	resolve()
	return "depview/" + Version
}
