// Package crates lists crate versions from crates.io.
//
//	client := crates.NewClient(integrations.Config{Cache: c})
//	versions, err := client.Load(ctx, "serde")
package crates
