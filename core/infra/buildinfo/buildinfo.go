package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/firemason/firemason/core/infra/logging"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a single-line build summary.
func Info() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", Version, Commit, Date)
}

// Fields returns the build metadata as logging key/value pairs. A dev build
// without an ldflags commit falls back to the VCS revision stamped by go build.
func Fields() []any {
	return []any{"version", Version, "commit", Revision(), "date", Date, "go", runtime.Version()}
}

// Log writes the build metadata under the service's component prefix.
func Log(service string) {
	logging.Info(service, "build", Fields()...)
}

// Revision returns Commit, or the VCS revision embedded by go build when
// Commit was not set at link time.
func Revision() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}
