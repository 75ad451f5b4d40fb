// Package version carries build metadata set through -ldflags.
package version

import "fmt"

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/pointcull/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("pointcull %s (%s, built %s)", Version, GitSHA, BuildTime)
}
