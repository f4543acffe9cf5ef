// Package version holds build metadata, set with -ldflags -X at release time.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info is the build metadata in one value.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"date"`
	GoVersion string `json:"go"`
}

// Get returns the build metadata. An unset GitSHA falls back to the VCS
// revision recorded by the Go toolchain, when there is one.
func Get() Info {
	info := Info{Version: Version, Commit: GitSHA, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Commit == "unknown" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.Commit, i.BuildTime)
}
