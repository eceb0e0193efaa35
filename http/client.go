// Package http provides the HTTP implementation of grimoire.Fetcher and
// the auth client for the remote content API.
//
// The remote exposes one read endpoint per content kind, each returning
// a JSON array of items. Standard status semantics apply: 2xx succeeds,
// 4xx is a remote rejection and must not be retried, 5xx and transport
// failures are transient.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/archerdnd/grimoire"
)

// DefaultTimeout is the default timeout for a single HTTP request.
const DefaultTimeout = 10 * time.Second

// Compile-time interface verification.
var _ grimoire.Fetcher = (*Client)(nil)

// Client fetches official content from the remote API.
type Client struct {
	endpoint string
	token    string
	timeout  time.Duration
	client   *http.Client
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken attaches a bearer token to every request. Content endpoints
// also work anonymously; the token widens access to user-linked content.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient overrides the underlying http.Client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client for the given API base URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// item is the wire shape of one content entry.
type item struct {
	Slug    string          `json:"slug"`
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Tags    []string        `json:"tags"`
	Data    json.RawMessage `json:"data"`
}

// kindPath returns the collection path for a kind, e.g. spell → /spells.
func kindPath(kind grimoire.Kind) string {
	return "/" + string(kind) + "s"
}

// FetchKind retrieves all official entries of the given kind.
func (c *Client) FetchKind(ctx context.Context, kind grimoire.Kind) ([]*grimoire.Entry, error) {
	url := c.endpoint + kindPath(kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, grimoire.Errorf(grimoire.ECANCELED, "fetch %s: %v", kind, ctx.Err())
		}
		return nil, grimoire.Errorf(grimoire.EUNAVAILABLE, "fetch %s: %v", kind, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode >= 500:
		return nil, grimoire.Errorf(grimoire.EUNAVAILABLE, "fetch %s: HTTP %d", kind, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, grimoire.Errorf(grimoire.ENOTFOUND, "fetch %s: HTTP 404", kind)
	default:
		return nil, grimoire.Errorf(grimoire.EINVALID, "fetch %s: HTTP %d", kind, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, grimoire.Errorf(grimoire.EUNAVAILABLE, "fetch %s: read body: %v", kind, err)
	}

	var items []item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, grimoire.Errorf(grimoire.EINVALID, "fetch %s: decode response: %v", kind, err)
	}

	fetchedAt := c.now().UTC()
	entries := make([]*grimoire.Entry, 0, len(items))
	for _, it := range items {
		if it.Slug == "" {
			return nil, grimoire.Errorf(grimoire.EINVALID, "fetch %s: item without slug", kind)
		}
		name := it.Name
		if name == "" {
			name = it.Slug
		}
		entries = append(entries, &grimoire.Entry{
			ID:        grimoire.ContentID{Kind: kind, Slug: strings.ToLower(it.Slug)},
			Name:      name,
			Payload:   it.Data,
			Origin:    grimoire.OriginOfficial,
			Version:   it.Version,
			Tags:      it.Tags,
			FetchedAt: fetchedAt,
		})
	}
	return entries, nil
}

// postJSON sends a JSON body and decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return grimoire.Errorf(grimoire.EUNAVAILABLE, "POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return grimoire.Errorf(grimoire.EUNAVAILABLE, "POST %s: read body: %v", path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500:
		return grimoire.Errorf(grimoire.EUNAVAILABLE, "POST %s: HTTP %d", path, resp.StatusCode)
	default:
		return grimoire.Errorf(grimoire.EINVALID, "POST %s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return grimoire.Errorf(grimoire.EINVALID, "POST %s: decode response: %v", path, err)
		}
	}
	return nil
}
