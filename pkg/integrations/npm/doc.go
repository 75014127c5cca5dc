// Package npm lists package versions from the npm registry.
//
// # Usage
//
//	client := npm.NewClient(integrations.Config{Cache: c})
//	versions, err := client.Load(ctx, "express")
//
// The client reads the full packument (GET /{name}) and keeps one
// [integrations.Release] per entry of its "versions" object.
package npm
