package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/tav/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Release is the registry metadata tav keeps for one published version.
// Only the version keys drive resolution; the rest is informational.
type Release struct {
	Published  time.Time `json:"published,omitempty"`
	Deprecated bool      `json:"deprecated,omitempty"` // npm deprecation or PyPI/crates yank
}

// Registry lists the published versions of a package.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Name returns the registry identifier (e.g. "npm").
	Name() string
	// Load returns every published version of pkg keyed by version string.
	Load(ctx context.Context, pkg string) (map[string]Release, error)
}

// Config holds the settings shared by every registry client.
type Config struct {
	Cache   cache.Cache   // Response cache (default: NullCache)
	Keyer   cache.Keyer   // Cache key builder (default: DefaultKeyer)
	TTL     time.Duration // Cache lifetime (default: cache.TTLVersions)
	Refresh bool          // Skip cached reads
	BaseURL string        // Registry endpoint override (mirrors, tests)
}

// WithDefaults returns a copy of Config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Cache == nil {
		c.Cache = cache.NewNullCache()
	}
	if c.Keyer == nil {
		c.Keyer = cache.NewDefaultKeyer()
	}
	if c.TTL <= 0 {
		c.TTL = cache.TTLVersions
	}
	return c
}

// BaseURLOr returns the configured BaseURL or def when none is set.
func (c Config) BaseURLOr(def string) string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return def
}

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// URLEncode percent-encodes a path segment. Scoped npm names keep their
// leading "@" but encode the slash, as the npm registry expects.
func URLEncode(s string) string { return url.PathEscape(s) }
