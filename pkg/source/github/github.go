// Package github resolves plugins from GitHub release assets.
//
// GitHub carries no Minecraft compatibility metadata, so this adapter never
// filters by platform version; callers surface that caveat to the user. The
// artifact is the first .jar asset of the chosen release, downloaded to
// compute its digest since GitHub publishes none.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source"
)

const defaultBaseURL = "https://api.github.com"

type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type repository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type searchResponse struct {
	Items []repository `json:"items"`
}

// Source resolves plugins published as GitHub release assets.
type Source struct {
	client  *httputil.Client
	baseURL string
}

func New(client *httputil.Client) *Source {
	return &Source{client: client, baseURL: defaultBaseURL}
}

func (s *Source) Name() string { return "github" }

func (s *Source) ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidID, "GitHub repository name cannot be empty")
	}
	return nil
}

func (s *Source) Resolve(ctx context.Context, id, requested, _ string) (*source.ResolvedVersion, error) {
	if err := s.ValidateID(id); err != nil {
		return nil, err
	}

	owner, repo, err := s.resolveRepo(ctx, id)
	if err != nil {
		return nil, err
	}

	var r repository
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s/%s", s.baseURL, owner, repo), &r); err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, err, "repository %s/%s not found on GitHub", owner, repo)
	}

	rel, err := s.fetchRelease(ctx, owner, repo, requested)
	if err != nil {
		return nil, err
	}

	jar, ok := firstJAR(rel.Assets)
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "no .jar file found in release %q for %s/%s", rel.TagName, owner, repo)
	}

	digest, _, err := s.client.DownloadDigest(ctx, jar.BrowserDownloadURL, checksum.SHA256, jar.Name)
	if err != nil {
		return nil, err
	}

	return &source.ResolvedVersion{
		Version:  rel.TagName,
		Filename: jar.Name,
		URL:      jar.BrowserDownloadURL,
		Hash:     digest,
	}, nil
}

// resolveRepo turns id into an owner/repo pair, falling back to repository
// search ordered by stars. The stable ranking keeps GitHub's popularity
// order among equally exact name matches.
func (s *Source) resolveRepo(ctx context.Context, id string) (owner, repo string, err error) {
	if o, n, ok := source.ParseOwnerName(id); ok {
		return o, n, nil
	}

	query := url.QueryEscape(fmt.Sprintf("%s in:name", id))
	u := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=100", s.baseURL, query)

	var resp searchResponse
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Items) == 0 {
		return "", "", errors.New(errors.CodeNotFound, "no repositories found matching %q on GitHub", id)
	}

	source.RankStable(resp.Items, id, func(r repository) string { return r.Name })
	best := resp.Items[0]
	return best.Owner.Login, best.Name, nil
}

// fetchRelease gets the tagged release, or the latest when no version was
// requested. The two miss cases read differently on purpose: a missing tag
// and a repository with no releases at all call for different fixes.
func (s *Source) fetchRelease(ctx context.Context, owner, repo, requested string) (*release, error) {
	var u string
	if requested != "" {
		u = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", s.baseURL, owner, repo, requested)
	} else {
		u = fmt.Sprintf("%s/repos/%s/%s/releases/latest", s.baseURL, owner, repo)
	}

	var rel release
	if err := s.client.GetJSON(ctx, u, &rel); err != nil {
		if requested != "" {
			return nil, errors.Wrap(errors.CodeNotFound, err, "release %q not found for repository %s/%s", requested, owner, repo)
		}
		return nil, errors.Wrap(errors.CodeNotFound, err, "no releases found for repository %s/%s", owner, repo)
	}
	return &rel, nil
}

func firstJAR(assets []asset) (asset, bool) {
	for _, a := range assets {
		if strings.HasSuffix(a.Name, ".jar") {
			return a, true
		}
	}
	return asset{}, false
}
