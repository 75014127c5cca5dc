package pypi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/tav/pkg/integrations"
)

// DefaultURL is the public Python Package Index.
const DefaultURL = "https://pypi.org"

// Client lists release versions from the PyPI JSON API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client from cfg.
func NewClient(cfg integrations.Config) *Client {
	return &Client{
		Client:  integrations.NewClient(cfg, "pypi", nil),
		baseURL: cfg.BaseURLOr(DefaultURL),
	}
}

// Name returns "pypi".
func (c *Client) Name() string { return "pypi" }

// Load returns every release of pkg listed under "releases".
//
// Package names are normalized per PEP 503 (lowercase, underscores become
// hyphens). A release is marked deprecated when every uploaded file was
// yanked; its publish time is the earliest upload.
func (c *Client) Load(ctx context.Context, pkg string) (map[string]integrations.Release, error) {
	pkg = integrations.NormalizePkgName(pkg)

	if err := c.ValidateName(pkg); err != nil {
		return nil, err
	}

	var releases map[string]integrations.Release
	err := c.Cached(ctx, pkg, &releases, func() error {
		return c.fetch(ctx, pkg, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, out *map[string]integrations.Release) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/pypi/%s/json", c.baseURL, integrations.URLEncode(pkg)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	releases := make(map[string]integrations.Release, len(data.Releases))
	for v, files := range data.Releases {
		releases[v] = summarize(files)
	}
	*out = releases
	return nil
}

func summarize(files []apiFile) integrations.Release {
	var rel integrations.Release
	yanked := len(files) > 0
	for _, f := range files {
		yanked = yanked && f.Yanked
		ts, err := time.Parse(time.RFC3339, f.UploadTime)
		if err == nil && (rel.Published.IsZero() || ts.Before(rel.Published)) {
			rel.Published = ts
		}
	}
	rel.Deprecated = yanked
	return rel
}

type apiResponse struct {
	Releases map[string][]apiFile `json:"releases"`
}

type apiFile struct {
	UploadTime string `json:"upload_time_iso_8601"`
	Yanked     bool   `json:"yanked"`
}
