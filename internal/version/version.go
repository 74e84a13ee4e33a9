// Package version holds the commitlog build information.
// It has no dependencies so any package can import it.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// UserAgent identifies commitlog to GitHub and the download host.
func UserAgent() string {
	return fmt.Sprintf("commitlog/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
