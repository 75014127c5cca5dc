// Package pypi lists release versions from the Python Package Index.
//
// # Usage
//
//	client := pypi.NewClient(integrations.Config{Cache: c})
//	versions, err := client.Load(ctx, "fastapi")
//
// Versions come from the "releases" object of GET /pypi/{name}/json. Keys
// are PEP 440 strings; those that are not valid semver are kept but ignored
// by range matching.
package pypi
