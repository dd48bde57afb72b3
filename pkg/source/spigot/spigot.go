// Package spigot resolves plugins against SpigotMC via the Spiget API.
//
// Spiget is the least structured of the catalogs: resources are addressed by
// numeric ID, version metadata frequently omits tested Minecraft versions,
// and the download endpoint may sit behind Cloudflare, in which case an
// external URL published by the resource is the only way at the artifact.
// No version carries an upstream digest, so every resolution downloads the
// JAR to hash it.
package spigot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
	"github.com/jarlock-dev/jarlock/pkg/httputil"
	"github.com/jarlock-dev/jarlock/pkg/source"
)

const defaultBaseURL = "https://api.spiget.org/v2"

type resource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	File *struct {
		ExternalURL string `json:"externalUrl"`
	} `json:"file"`
}

type version struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	ReleaseDate    int64    `json:"releaseDate"`
	TestedVersions []string `json:"testedVersions"`
}

// Source resolves plugins hosted on SpigotMC.
type Source struct {
	client  *httputil.Client
	baseURL string
}

func New(client *httputil.Client) *Source {
	return &Source{client: client, baseURL: defaultBaseURL}
}

func (s *Source) Name() string { return "spigot" }

func (s *Source) ValidateID(id string) error {
	if id == "" {
		return errors.New(errors.CodeInvalidID, "Spigot plugin ID cannot be empty")
	}
	return nil
}

func (s *Source) Resolve(ctx context.Context, id, requested, mcVersion string) (*source.ResolvedVersion, error) {
	if err := s.ValidateID(id); err != nil {
		return nil, err
	}

	resourceID, err := s.resolveResourceID(ctx, id)
	if err != nil {
		return nil, err
	}

	var res resource
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/resources/%d", s.baseURL, resourceID), &res); err != nil {
		return nil, errors.Wrap(errors.CodeNotFound, err, "resource %d not found in Spigot", resourceID)
	}
	externalURL := ""
	if res.File != nil {
		externalURL = res.File.ExternalURL
	}

	versions, err := s.fetchVersions(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, errors.New(errors.CodeNotFound, "no versions found for resource %d", resourceID)
	}

	cfg := source.SelectionConfig{
		PluginID:        strconv.FormatInt(resourceID, 10),
		EmptyCompatible: true,
	}
	chosen, err := source.Choose(versions, requested, mcVersion, cfg)
	if err != nil {
		return nil, err
	}

	return s.downloadAndHash(ctx, resourceID, chosen, externalURL)
}

// resolveResourceID accepts a numeric resource ID directly; anything else is
// treated as a search term.
func (s *Source) resolveResourceID(ctx context.Context, id string) (int64, error) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n, nil
	}
	res, err := s.search(ctx, id)
	if err != nil {
		return 0, err
	}
	return res.ID, nil
}

// search queries Spiget's resource search, also trying the hyphens-as-spaces
// variant of the term since resource names are usually written with spaces.
func (s *Source) search(ctx context.Context, term string) (*resource, error) {
	terms := []string{term}
	if strings.Contains(term, "-") {
		terms = append(terms, strings.ReplaceAll(term, "-", " "))
	}

	for _, t := range terms {
		u := fmt.Sprintf("%s/search/resources/%s?size=100", s.baseURL, url.PathEscape(t))
		var results []resource
		if err := s.client.GetJSON(ctx, u, &results); err != nil {
			continue
		}
		if len(results) > 0 {
			source.Rank(results, term, func(r resource) string { return r.Name })
			return &results[0], nil
		}
	}
	return nil, errors.New(errors.CodeNotFound, "no resources found matching %q in Spigot", term)
}

func (s *Source) fetchVersions(ctx context.Context, resourceID int64) ([]source.NormalizedVersion, error) {
	var raw []version
	u := fmt.Sprintf("%s/resources/%d/versions?size=1000", s.baseURL, resourceID)
	if err := s.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, err
	}

	out := make([]source.NormalizedVersion, 0, len(raw))
	for _, v := range raw {
		out = append(out, source.NormalizedVersion{
			Version:      v.Name,
			PublishedAt:  time.Unix(v.ReleaseDate, 0).UTC(),
			GameVersions: v.TestedVersions,
			Download: source.DownloadInfo{
				URL: fmt.Sprintf("%s/resources/%d/versions/%d/download", s.baseURL, resourceID, v.ID),
			},
		})
	}
	return out, nil
}

// downloadAndHash fetches the chosen version's artifact and computes its
// digest. When Spiget's own download endpoint fails, the resource's external
// URL is tried, but only if it actually serves a JAR.
func (s *Source) downloadAndHash(ctx context.Context, resourceID int64, v *source.NormalizedVersion, externalURL string) (*source.ResolvedVersion, error) {
	resp, err := s.client.Download(ctx, v.Download.URL)
	if err != nil {
		return nil, err
	}
	finalURL := v.Download.URL

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status := resp.StatusCode
		httputil.Discard(resp)

		if externalURL == "" {
			if status == http.StatusForbidden {
				return nil, errors.New(errors.CodeTransport,
					"SpigotMC uses Cloudflare protection that blocks automated downloads, and resource %d has no external download URL. Download the plugin manually from https://www.spigotmc.org/resources/%d/ and add it to your server",
					resourceID, resourceID)
			}
			return nil, errors.New(errors.CodeTransport,
				"failed to download resource %d version %q: HTTP %d", resourceID, v.Version, status)
		}

		resp, err = s.client.Download(ctx, externalURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			status := resp.StatusCode
			httputil.Discard(resp)
			return nil, errors.New(errors.CodeTransport,
				"failed to download resource %d version %q from external URL %s: HTTP %d",
				resourceID, v.Version, externalURL, status)
		}
		if !servesJAR(resp, externalURL) {
			ct := httputil.ContentType(resp)
			httputil.Discard(resp)
			if ct == "" {
				ct = "not specified"
			}
			return nil, errors.New(errors.CodeTransport,
				"external URL %s for resource %d version %q does not point to a JAR file (Content-Type: %s)",
				externalURL, resourceID, v.Version, ct)
		}
		finalURL = externalURL
	}
	defer resp.Body.Close()

	filename := httputil.ExtractFilename(resp, finalURL)
	if filename == "" || filename == httputil.FallbackFilename || filename == "download" {
		filename = v.Version + ".jar"
	}

	digest, err := checksum.SumReader(resp.Body, checksum.SHA256)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransport, err, "reading %s", finalURL)
	}

	return &source.ResolvedVersion{
		Version:  v.Version,
		Filename: filename,
		URL:      finalURL,
		Hash:     digest,
	}, nil
}

func servesJAR(resp *http.Response, url string) bool {
	ct := httputil.ContentType(resp)
	return strings.HasPrefix(ct, "application/java-archive") ||
		strings.HasPrefix(ct, "application/x-java-archive") ||
		strings.HasSuffix(url, ".jar")
}
