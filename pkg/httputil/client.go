package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jarlock-dev/jarlock/pkg/checksum"
	"github.com/jarlock-dev/jarlock/pkg/errors"
)

// FallbackFilename is used when neither the Content-Disposition header nor
// the URL yields a usable artifact name.
const FallbackFilename = "download.jar"

// Client wraps an http.Client with the User-Agent and error mapping shared
// by every catalog adapter. A single Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a Client identifying itself as userAgent on every
// request. Requests are bounded by the caller's context, not a client-wide
// timeout, since artifact downloads can legitimately run long.
func NewClient(userAgent string) *Client {
	return &Client{
		http:      &http.Client{},
		userAgent: userAgent,
	}
}

// GetJSON fetches url and decodes the JSON response into v.
// Transient failures (network errors, 5xx) are retried with backoff.
// A 404 yields a CodeNotFound error; other non-2xx statuses and decode
// failures yield CodeTransport.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return RetryWithBackoff(ctx, func() error {
		resp, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := checkStatus(resp.StatusCode, url); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return errors.Wrap(errors.CodeTransport, err, "decoding response from %s", url)
		}
		return nil
	})
}

// Download issues a GET for url and returns the raw response without status
// checking. Callers that need fallback behavior (e.g. Spiget external URLs)
// inspect the status themselves; everyone else uses DownloadDigest.
func (c *Client) Download(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DownloadDigest downloads url, streaming the body through a digest, and
// returns the canonical "algo:hex" hash along with the artifact filename.
// The filename comes from Content-Disposition or the URL; defaultName is
// substituted when neither yields anything better than "download.jar".
func (c *Client) DownloadDigest(ctx context.Context, url string, algo checksum.Algorithm, defaultName string) (digest, filename string, err error) {
	resp, err := c.Download(ctx, url)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", errors.New(errors.CodeTransport, "download failed: %s (HTTP %d)", url, resp.StatusCode)
	}

	filename = ExtractFilename(resp, url)
	if defaultName != "" && (filename == "" || filename == FallbackFilename) {
		filename = defaultName
	}

	digest, err = checksum.SumReader(resp.Body, algo)
	if err != nil {
		return "", "", errors.Wrap(errors.CodeTransport, err, "reading %s", url)
	}
	return digest, filename, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTransport, err, "building request for %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.CodeTransport, err, "requesting %s", url)}
	}
	return resp, nil
}

func checkStatus(code int, url string) error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.CodeNotFound, "resource not found: %s", url)
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.CodeTransport, "request failed: %s (HTTP %d)", url, code)}
	default:
		return errors.New(errors.CodeTransport, "request failed: %s (HTTP %d)", url, code)
	}
}

// ExtractFilename derives an artifact filename from the response's
// Content-Disposition header, falling back to the last URL path segment.
func ExtractFilename(resp *http.Response, url string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, after, ok := strings.Cut(cd, "filename="); ok {
			name := strings.Trim(after, `"`)
			name, _, _ = strings.Cut(name, ";")
			if name = strings.Trim(name, `"`); name != "" {
				return name
			}
		}
	}

	// Last path segment, query stripped.
	name := url
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name, _, _ = strings.Cut(name, "?")
	if name == "" {
		return FallbackFilename
	}
	return name
}

// ContentType returns the response's lowercased Content-Type header.
func ContentType(resp *http.Response) string {
	return strings.ToLower(resp.Header.Get("Content-Type"))
}

// Discard drains and closes a response body so the connection can be reused.
func Discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
