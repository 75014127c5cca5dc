// Package goproxy lists module versions from a Go module proxy
// (https://proxy.golang.org by default).
//
// # Usage
//
//	client := goproxy.NewClient(integrations.Config{Cache: c})
//	versions, err := client.Load(ctx, "github.com/spf13/cobra")
//
// Versions keep their "v" prefix ("v1.8.0"); semver range matching accepts it.
package goproxy
