package goproxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/tav/pkg/integrations"
)

// DefaultURL is the public Go module proxy.
const DefaultURL = "https://proxy.golang.org"

// Client lists module versions from a Go module proxy.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client from cfg.
// cfg.BaseURL may point at any GOPROXY-protocol server.
func NewClient(cfg integrations.Config) *Client {
	return &Client{
		Client:  integrations.NewClient(cfg, "goproxy", nil),
		baseURL: cfg.BaseURLOr(DefaultURL),
	}
}

// Name returns "goproxy".
func (c *Client) Name() string { return "goproxy" }

// Load returns the tagged versions of mod from the @v/list endpoint.
//
// Module paths with uppercase letters are escaped per the Go module proxy
// protocol. Pseudo-versions are not listed by the proxy and therefore never
// appear. The proxy exposes no publish times.
func (c *Client) Load(ctx context.Context, mod string) (map[string]integrations.Release, error) {
	mod = strings.TrimSpace(mod)

	if err := c.ValidateName(mod); err != nil {
		return nil, err
	}

	var releases map[string]integrations.Release
	err := c.Cached(ctx, mod, &releases, func() error {
		return c.fetch(ctx, mod, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetch(ctx context.Context, mod string, out *map[string]integrations.Release) error {
	url := fmt.Sprintf("%s/%s/@v/list", c.baseURL, escapePath(mod))
	body, err := c.GetText(ctx, url)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: go module %s", err, mod)
		}
		return err
	}
	*out = parseList(body)
	return nil
}

func parseList(body string) map[string]integrations.Release {
	releases := make(map[string]integrations.Release)
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if v := strings.TrimSpace(sc.Text()); v != "" {
			releases[v] = integrations.Release{}
		}
	}
	return releases
}

// escapePath applies the module proxy case encoding: each uppercase letter
// becomes "!" followed by its lowercase form.
func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if unicode.IsUpper(r) {
			b.WriteByte('!')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
