// Package buildinfo exposes the version stamped into a jarlock binary.
//
// Release builds set the variables via ldflags:
//
//	go build -ldflags "-X github.com/jarlock-dev/jarlock/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/jarlock-dev/jarlock/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/jarlock-dev/jarlock/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Short is the bare version string, used in the HTTP User-Agent.
func Short() string {
	return Version
}

// Template returns the cobra version template, shown by --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
