// Package version carries build metadata injected with -ldflags.
package version

import "fmt"

// Build metadata, set via -X github.com/Sumatoshi-tech/docspec/pkg/version.Version=... at link time.
var (
	Version = "dev"     //nolint:gochecknoglobals // set by the linker.
	Commit  = "unknown" //nolint:gochecknoglobals // set by the linker.
	Date    = "unknown" //nolint:gochecknoglobals // set by the linker.
)

// String formats the build metadata for display.
func String() string {
	return fmt.Sprintf("docspec %s (commit: %s, built: %s)", Version, Commit, Date)
}
