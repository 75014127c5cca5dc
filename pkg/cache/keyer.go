package cache

// Keyer builds cache keys for the values tav stores.
type Keyer interface {
	// HTTPKey is the key for a decoded registry response.
	// namespace identifies the registry (e.g. "npm").
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
