// Package version exposes build-time identity for the meristem binaries.
package version

// Overridden at build time via -ldflags.
//
//nolint:gochecknoglobals
var (
	name    = "meristem"
	version = "dev"
	commit  = "unknown"
)

// Name returns the project name.
func Name() string {
	return name
}

// Version returns the semantic version or "dev".
func Version() string {
	return version
}

// Commit returns the VCS commit the binary was built from.
func Commit() string {
	return commit
}
