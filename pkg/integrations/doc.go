// Package integrations provides HTTP clients that list published package
// versions from package registries.
//
// # Overview
//
// Each registry has its own subpackage, and every client implements
// [Registry]:
//
//   - [npm]: Node Package Manager
//   - [pypi]: Python Package Index
//   - [crates]: Rust crates.io
//   - [goproxy]: Go Module Proxy
//
// [registries.New] picks a client by name.
//
// # Client Pattern
//
// All registry clients follow a consistent pattern:
//
//	client := npm.NewClient(integrations.Config{Cache: c, TTL: 6 * time.Hour})
//	versions, err := client.Load(ctx, "express")
//
// Clients handle:
//   - HTTP requests with retry on transient failures
//   - Response caching through [cache.Cache]
//   - API-specific parsing into a version → [Release] map
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP, caching and retry plumbing used by
// all registry clients and reports to the observability cache and HTTP hooks.
package integrations
