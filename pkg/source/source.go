package source

import "context"

// Source is a plugin catalog adapter. Implementations are stateless beyond
// their HTTP client and safe for concurrent use.
type Source interface {
	// Name returns the catalog identifier used in manifests and lockfiles
	// (e.g. "modrinth").
	Name() string

	// ValidateID reports whether id is well-formed for this catalog,
	// without any network traffic. It does not imply the plugin exists.
	ValidateID(id string) error

	// Resolve finds the version of the plugin identified by id that is
	// compatible with mcVersion. When requested is empty the newest
	// compatible version wins; otherwise that exact version must exist
	// and be compatible.
	Resolve(ctx context.Context, id, requested, mcVersion string) (*ResolvedVersion, error)
}

// ResolvedVersion is the outcome of a successful resolution: everything the
// lockfile needs to pin a plugin.
type ResolvedVersion struct {
	Version  string
	Filename string
	URL      string
	Hash     string
}
