// Package httputil provides the shared HTTP plumbing for catalog API clients
// and artifact downloads.
//
// All requests identify themselves with a jarlock User-Agent and nothing
// else; the upstream catalogs (Modrinth, Hangar, Spiget, GitHub) are public
// REST APIs. JSON fetches retry transient failures (network errors, 5xx)
// with exponential backoff; artifact downloads stream their bytes through a
// digest so integrity can be checked without buffering whole JARs in memory.
package httputil
