// Package modrinth resolves plugins against the Modrinth v2 API.
//
// Modrinth is the only catalog that filters versions server-side (via the
// game_versions query parameter) and the only one publishing sha512 digests,
// so resolved plugins from here never need a download just to learn a hash.
package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source"
)

const defaultBaseURL = "https://api.modrinth.com/v2"

type project struct {
	ID string `json:"id"`
}

type version struct {
	VersionNumber string        `json:"version_number"`
	DatePublished string        `json:"date_published"`
	GameVersions  []string      `json:"game_versions"`
	Files         []versionFile `json:"files"`
}

type versionFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Hashes   struct {
		SHA512 string `json:"sha512"`
	} `json:"hashes"`
}

// Source resolves plugins hosted on Modrinth.
type Source struct {
	client  *httputil.Client
	baseURL string
}

func New(client *httputil.Client) *Source {
	return &Source{client: client, baseURL: defaultBaseURL}
}

func (s *Source) Name() string { return "modrinth" }

func (s *Source) ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidID, "Modrinth plugin ID cannot be empty")
	}
	return nil
}

func (s *Source) Resolve(ctx context.Context, id, requested, mcVersion string) (*source.ResolvedVersion, error) {
	if err := s.ValidateID(id); err != nil {
		return nil, err
	}

	var proj project
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/project/%s", s.baseURL, id), &proj); err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, err, "plugin %q not found in Modrinth", id)
	}

	versions, err := s.fetchVersions(ctx, id, mcVersion)
	if err != nil {
		return nil, err
	}

	// The server-side filter returned nothing; refetch unfiltered so the
	// selector can report which versions would have been compatible.
	if len(versions) == 0 && mcVersion != "" {
		if versions, err = s.fetchVersions(ctx, id, ""); err != nil {
			return nil, err
		}
	}

	return source.Select(ctx, s.client, versions, requested, mcVersion, source.SelectionConfig{PluginID: id})
}

func (s *Source) fetchVersions(ctx context.Context, id, mcVersion string) ([]source.NormalizedVersion, error) {
	u := fmt.Sprintf("%s/project/%s/version", s.baseURL, id)
	if mcVersion != "" {
		filter, err := json.Marshal([]string{mcVersion})
		if err != nil {
			return nil, errors.Wrap(errors.CodeTransport, err, "encoding game version filter")
		}
		u += "?game_versions=" + url.QueryEscape(string(filter))
	}

	var raw []version
	if err := s.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	out := make([]source.NormalizedVersion, 0, len(raw))
	for _, v := range raw {
		if nv, ok := normalize(v); ok {
			out = append(out, nv)
		}
	}
	return out, nil
}

// normalize translates a Modrinth version into the common shape. Versions
// without files are skipped; there is nothing to download.
func normalize(v version) (source.NormalizedVersion, bool) {
	if len(v.Files) == 0 {
		return source.NormalizedVersion{}, false
	}
	file := v.Files[0]

	published, _ := time.Parse(time.RFC3339, v.DatePublished)

	return source.NormalizedVersion{
		Version:      v.VersionNumber,
		PublishedAt:  published,
		GameVersions: v.GameVersions,
		Download: source.DownloadInfo{
			URL:      file.URL,
			Filename: file.Filename,
			Hash:     checksum.Format(checksum.SHA512, file.Hashes.SHA512),
		},
	}, true
}
