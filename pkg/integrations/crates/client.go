package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/tav/pkg/buildinfo"
	"github.com/matzehuels/tav/pkg/integrations"
)

// DefaultURL is the crates.io API root.
const DefaultURL = "https://crates.io/api/v1"

// Client lists crate versions from the crates.io registry API.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client from cfg.
func NewClient(cfg integrations.Config) *Client {
	headers := map[string]string{
		"User-Agent": "tav/" + buildinfo.Version + " (https://github.com/matzehuels/tav)",
	}
	return &Client{
		Client:  integrations.NewClient(cfg, "crates", headers),
		baseURL: cfg.BaseURLOr(DefaultURL),
	}
}

// Name returns "crates".
func (c *Client) Name() string { return "crates" }

// Load returns every published version of crate, yanked ones included
// (marked deprecated).
func (c *Client) Load(ctx context.Context, crate string) (map[string]integrations.Release, error) {
	if err := c.ValidateName(crate); err != nil {
		return nil, err
	}

	var releases map[string]integrations.Release
	err := c.Cached(ctx, crate, &releases, func() error {
		return c.fetch(ctx, crate, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetch(ctx context.Context, crate string, out *map[string]integrations.Release) error {
	var data crateResponse
	if err := c.Get(ctx, c.baseURL+"/crates/"+integrations.URLEncode(crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	releases := make(map[string]integrations.Release, len(data.Versions))
	for _, v := range data.Versions {
		rel := integrations.Release{Deprecated: v.Yanked}
		rel.Published, _ = time.Parse(time.RFC3339, v.CreatedAt)
		releases[v.Num] = rel
	}
	*out = releases
	return nil
}

type crateResponse struct {
	Versions []versionInfo `json:"versions"`
}

type versionInfo struct {
	Num       string `json:"num"`
	CreatedAt string `json:"created_at"`
	Yanked    bool   `json:"yanked"`
}
