// Package hangar resolves plugins against the Hangar API (PaperMC's plugin
// repository).
//
// Hangar addresses projects as owner/slug pairs; bare names go through the
// project search first. Downloads prefer the PAPER platform entry and fall
// back to any platform exposing a usable URL.
package hangar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source"
)

const defaultBaseURL = "https://hangar.papermc.io/api/v1"

type project struct {
	Name      string `json:"name"`
	Namespace struct {
		Owner string `json:"owner"`
		Slug  string `json:"slug"`
	} `json:"namespace"`
}

type searchResponse struct {
	Result []project `json:"result"`
}

type version struct {
	Name                 string              `json:"name"`
	CreatedAt            string              `json:"createdAt"`
	PlatformDependencies map[string][]string `json:"platformDependencies"`
	Downloads            map[string]download `json:"downloads"`
}

type download struct {
	FileInfo *struct {
		Name       string `json:"name"`
		SHA256Hash string `json:"sha256Hash"`
	} `json:"fileInfo"`
	DownloadURL string `json:"downloadUrl"`
	ExternalURL string `json:"externalUrl"`
}

type versionsResponse struct {
	Result []version `json:"result"`
}

// Source resolves plugins hosted on Hangar.
type Source struct {
	client  *httputil.Client
	baseURL string
}

func New(client *httputil.Client) *Source {
	return &Source{client: client, baseURL: defaultBaseURL}
}

func (s *Source) Name() string { return "hangar" }

func (s *Source) ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidID, "Hangar plugin ID cannot be empty")
	}
	return nil
}

func (s *Source) Resolve(ctx context.Context, id, requested, mcVersion string) (*source.ResolvedVersion, error) {
	if err := s.ValidateID(id); err != nil {
		return nil, err
	}

	owner, slug, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}
	displayID := owner + "/" + slug

	var proj project
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/projects/%s/%s", s.baseURL, owner, slug), &proj); err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, err, "plugin %q not found in Hangar", displayID)
	}

	versions, err := s.fetchVersions(ctx, owner, slug)
	if err != nil {
		return nil, err
	}

	return source.Select(ctx, s.client, versions, requested, mcVersion, source.SelectionConfig{PluginID: displayID})
}

// resolveID turns id into an owner/slug pair, searching by name when id is
// not already in that form.
func (s *Source) resolveID(ctx context.Context, id string) (owner, slug string, err error) {
	if o, n, ok := source.ParseOwnerName(id); ok {
		return o, n, nil
	}

	var resp searchResponse
	u := fmt.Sprintf("%s/projects?q=%s", s.baseURL, url.QueryEscape(id))
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Result) == 0 {
		return "", "", errors.New(errors.CodeNotFound, "no projects found matching %q in Hangar", id)
	}

	source.Rank(resp.Result, id, func(p project) string { return p.Name })
	best := resp.Result[0]
	return best.Namespace.Owner, best.Namespace.Slug, nil
}

func (s *Source) fetchVersions(ctx context.Context, owner, slug string) ([]source.NormalizedVersion, error) {
	var resp versionsResponse
	u := fmt.Sprintf("%s/projects/%s/%s/versions", s.baseURL, owner, slug)
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	out := make([]source.NormalizedVersion, 0, len(resp.Result))
	for _, v := range resp.Result {
		if nv, ok := normalize(v); ok {
			out = append(out, nv)
		}
	}
	return out, nil
}

// normalize translates a Hangar version into the common shape. Versions with
// no downloadable artifact on any platform are skipped.
func normalize(v version) (source.NormalizedVersion, bool) {
	dl, ok := pickDownload(v.Downloads)
	if !ok {
		return source.NormalizedVersion{}, false
	}

	u := dl.DownloadURL
	if u == "" {
		u = dl.ExternalURL
	}

	info := source.DownloadInfo{URL: u}
	if fi := dl.FileInfo; fi != nil {
		info.Filename = fi.Name
		if fi.Name != "" && fi.SHA256Hash != "" {
			info.Hash = checksum.Format(checksum.SHA256, fi.SHA256Hash)
		}
	}

	var gameVersions []string
	for _, deps := range v.PlatformDependencies {
		gameVersions = append(gameVersions, deps...)
	}

	published, _ := time.Parse(time.RFC3339, v.CreatedAt)

	return source.NormalizedVersion{
		Version:      v.Name,
		PublishedAt:  published,
		GameVersions: gameVersions,
		Download:     info,
	}, true
}

func pickDownload(downloads map[string]download) (download, bool) {
	usable := func(d download) bool { return d.DownloadURL != "" || d.ExternalURL != "" }

	if d, ok := downloads["PAPER"]; ok && usable(d) {
		return d, true
	}
	for _, d := range downloads {
		if usable(d) {
			return d, true
		}
	}
	return download{}, false
}
