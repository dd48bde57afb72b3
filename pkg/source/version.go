package source

import "time"

// NormalizedVersion is a catalog release translated into the common shape
// the selector operates on. Adapters produce these; nothing else does.
type NormalizedVersion struct {
	// Version is the catalog's version label, verbatim.
	Version string

	// PublishedAt orders versions when picking the latest. Adapters parse
	// the catalog's native timestamp format at the boundary; a zero time
	// sorts last.
	PublishedAt time.Time

	// GameVersions lists the Minecraft versions the release declares
	// support for. An empty list means the catalog provided no
	// compatibility metadata.
	GameVersions []string

	Download DownloadInfo
}

// DownloadInfo carries the artifact coordinates of a release. Hash is the
// canonical "algo:hex" digest, or empty when the catalog does not publish
// one; the selector fills it in by downloading.
type DownloadInfo struct {
	URL      string
	Filename string
	Hash     string
}
