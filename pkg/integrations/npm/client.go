package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/tav/pkg/integrations"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// Client lists package versions from the npm registry.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npm registry client from cfg.
// cfg.BaseURL overrides [DefaultURL] (e.g. for a private mirror).
func NewClient(cfg integrations.Config) *Client {
	return &Client{
		Client:  integrations.NewClient(cfg, "npm", nil),
		baseURL: cfg.BaseURLOr(DefaultURL),
	}
}

// Name returns "npm".
func (c *Client) Name() string { return "npm" }

// Load returns every published version of pkg.
//
// Scoped packages ("@scope/name") are supported. Publish times come from the
// packument's "time" map and deprecation from each version's "deprecated"
// field.
//
// Returns [integrations.ErrNotFound] if the package doesn't exist and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) Load(ctx context.Context, pkg string) (map[string]integrations.Release, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

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
	var data packument
	if err := c.Get(ctx, c.baseURL+"/"+integrations.URLEncode(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	releases := make(map[string]integrations.Release, len(data.Versions))
	for v, meta := range data.Versions {
		rel := integrations.Release{Deprecated: meta.Deprecated != nil && *meta.Deprecated != ""}
		if ts, ok := data.Time[v]; ok {
			rel.Published, _ = time.Parse(time.RFC3339, ts)
		}
		releases[v] = rel
	}
	*out = releases
	return nil
}

type packument struct {
	Name     string                 `json:"name"`
	Versions map[string]versionMeta `json:"versions"`
	Time     map[string]string      `json:"time"`
}

type versionMeta struct {
	Deprecated *string `json:"deprecated"`
}
