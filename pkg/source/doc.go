// Package source defines the catalog adapter contract and the shared
// resolution machinery built on top of it.
//
// Each upstream plugin catalog (Modrinth, Hangar, Spiget, GitHub releases)
// implements [Source] in its own subpackage. Adapters normalize whatever the
// catalog returns into [NormalizedVersion] values; version filtering,
// selection, and digest fallback then run through the same [Select] path for
// every catalog, so compatibility semantics cannot drift between them.
package source
