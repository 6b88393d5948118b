// Package version reports the build identity of the stats-tool binary. The
// values are stamped at build time with
//
//	-ldflags "-X stats-tool/internal/version.Version=v1.2.0 -X stats-tool/internal/version.Commit=abc1234"
package version

import "fmt"

var (
	// Version is the release tag, "dev" for local builds
	Version = "dev"

	// Commit is the short VCS revision, empty when not stamped
	Commit = ""

	// BuildTime is when the binary was built
	BuildTime = "unknown"
)

// String formats the build identity for the -version flag
func String() string {
	if Commit == "" {
		return fmt.Sprintf("stats-tool %s (built %s)", Version, BuildTime)
	}
	return fmt.Sprintf("stats-tool %s+%s (built %s)", Version, Commit, BuildTime)
}
