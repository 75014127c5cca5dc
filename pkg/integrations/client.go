package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/tav/pkg/cache"
	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/observability"
)

// Client provides shared HTTP functionality for all registry API clients.
// It handles caching, retry logic, and common request headers.
// All methods are safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	refresh   bool
	headers   map[string]string
}

// NewClient creates a Client from cfg. namespace separates this registry's
// cache entries from other registries (e.g. "npm"). Headers are applied to
// all requests made through this client; pass nil if none are needed.
func NewClient(cfg Config, namespace string, headers map[string]string) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		http:      NewHTTPClient(),
		cache:     cfg.Cache,
		keyer:     cfg.Keyer,
		namespace: namespace,
		ttl:       cfg.TTL,
		refresh:   cfg.Refresh,
		headers:   headers,
	}
}

// ValidateName checks pkg against the naming rules of this client's
// registry before any request is made.
func (c *Client) ValidateName(pkg string) error {
	return errors.ValidateRegistryPackage(c.namespace, pkg)
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If the client was configured with Refresh, the cache is bypassed on read
// but still written. The fetch function should populate v; on success, v is
// JSON-encoded and stored.
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	fullKey := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()

	if !c.refresh {
		if data, ok, err := c.cache.Get(ctx, fullKey); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, c.namespace)
				return nil
			}
		}
	}
	hooks.OnCacheMiss(ctx, c.namespace)

	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Used for plain-text endpoints such as the Go proxy's @v/list.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
