package source

import (
	"context"
	"sort"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
)

// SelectionConfig tunes how [Select] interprets a catalog's version list.
type SelectionConfig struct {
	// PluginID is used in error messages only.
	PluginID string

	// EmptyCompatible treats versions with no declared game versions as
	// compatible with everything. Spiget leaves compatibility metadata
	// empty so often that filtering it out would make the catalog
	// unusable; the other catalogs keep this false.
	EmptyCompatible bool
}

// Select picks the release satisfying requested and mcVersion from a
// catalog's version list and resolves it into download coordinates.
// Empty requested means "newest compatible"; empty mcVersion disables
// compatibility filtering. When the chosen release carries no digest the
// artifact is downloaded through client and hashed on the fly.
func Select(ctx context.Context, client *httputil.Client, versions []NormalizedVersion, requested, mcVersion string, cfg SelectionConfig) (*ResolvedVersion, error) {
	chosen, err := Choose(versions, requested, mcVersion, cfg)
	if err != nil {
		return nil, err
	}
	return resolveDownload(ctx, client, chosen)
}

// Choose runs the filter and selection phases of [Select] without resolving
// the download. Adapters with their own download handling (Spiget's external
// URL fallback) use this directly.
func Choose(versions []NormalizedVersion, requested, mcVersion string, cfg SelectionConfig) (*NormalizedVersion, error) {
	filtered := filterCompatible(versions, mcVersion, cfg.EmptyCompatible)
	if requested != "" {
		return selectRequested(versions, filtered, requested, mcVersion, cfg)
	}
	return selectLatest(versions, filtered, mcVersion, cfg)
}

func filterCompatible(versions []NormalizedVersion, mcVersion string, emptyCompatible bool) []NormalizedVersion {
	if mcVersion == "" {
		return versions
	}
	var out []NormalizedVersion
	for _, v := range versions {
		if isCompatible(v, mcVersion, emptyCompatible) {
			out = append(out, v)
		}
	}
	return out
}

func isCompatible(v NormalizedVersion, mcVersion string, emptyCompatible bool) bool {
	if len(v.GameVersions) == 0 {
		return emptyCompatible
	}
	for _, gv := range v.GameVersions {
		if MatchesGameVersion(gv, mcVersion) {
			return true
		}
	}
	return false
}

// selectRequested looks for an exact version label in the filtered list. A
// version that exists upstream but was filtered out is an incompatibility,
// not a miss: the error carries the versions it does support so the user
// can act on it.
func selectRequested(all, filtered []NormalizedVersion, requested, mcVersion string, cfg SelectionConfig) (*NormalizedVersion, error) {
	for i := range filtered {
		if filtered[i].Version == requested {
			return &filtered[i], nil
		}
	}
	for i := range all {
		if all[i].Version == requested {
			return nil, &errors.IncompatibleError{
				PluginID:   cfg.PluginID,
				Version:    requested,
				Minecraft:  mcVersion,
				Compatible: all[i].GameVersions,
			}
		}
	}
	return nil, errors.New(errors.CodeNotFound, "version %s of %s not found", requested, cfg.PluginID)
}

// selectLatest takes the most recently published compatible version. The
// sort is stable so equal timestamps keep the catalog's own order.
func selectLatest(all, filtered []NormalizedVersion, mcVersion string, cfg SelectionConfig) (*NormalizedVersion, error) {
	if len(filtered) == 0 {
		if len(all) == 0 {
			return nil, errors.New(errors.CodeNotFound, "no versions found for %s", cfg.PluginID)
		}
		// Best-effort hint: what the newest release does support.
		newest := newestOf(all)
		return nil, &errors.IncompatibleError{
			PluginID:   cfg.PluginID,
			Minecraft:  mcVersion,
			Compatible: newest.GameVersions,
		}
	}
	return newestOf(filtered), nil
}

func newestOf(versions []NormalizedVersion) *NormalizedVersion {
	sorted := make([]NormalizedVersion, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return &sorted[0]
}

func resolveDownload(ctx context.Context, client *httputil.Client, v *NormalizedVersion) (*ResolvedVersion, error) {
	filename := v.Download.Filename
	if filename == "" {
		filename = v.Version + ".jar"
	}

	hash := v.Download.Hash
	if hash == "" {
		digest, dlName, err := client.DownloadDigest(ctx, v.Download.URL, checksum.SHA256, filename)
		if err != nil {
			return nil, err
		}
		hash = digest
		if v.Download.Filename == "" && dlName != "" {
			filename = dlName
		}
	}

	return &ResolvedVersion{
		Version:  v.Version,
		Filename: filename,
		URL:      v.Download.URL,
		Hash:     hash,
	}, nil
}
