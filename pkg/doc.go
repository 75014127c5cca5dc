// Package pkg provides the libraries behind tav, which runs a project's
// tests against every declared version of its dependencies.
//
// # Overview
//
// A test folder holds a .tav.yml declaration naming tests, the packages
// each test exercises with version specifiers, and the commands to run.
// tav expands every test into a matrix of version combinations and runs
// each combination after installing the pinned versions.
//
// # Architecture
//
//	.tav.yml declarations
//	         ↓
//	    [meta] (parse, validate, aggregate package specs)
//	         ↓
//	    [resolve] (query registries, select versions)
//	         ↓
//	    [matrix] (expand combinations, install and run commands)
//	         ↓
//	    [schedule] (drain tests with bounded concurrency)
//
// [suite] composes these stages into a single run and reports progress
// through events.
//
// # Quick Start
//
//	reg, _ := registries.New("npm", integrations.Config{})
//	s := suite.New([]string{"test/express"}, suite.Options{
//	    Registry: reg,
//	    Limit:    4,
//	})
//	s.On(func(e suite.Event) {
//	    if u, ok := e.(suite.Update); ok {
//	        fmt.Println(u.Test.Name(), u.Status)
//	    }
//	})
//	res, err := s.Run(ctx)
//
// # Main Packages
//
// [meta] - Declaration format and specifier classification (range, static
// pin, latest).
//
// [resolve] - Version selection over registry releases. Ranges are reduced
// per mode (all, patch, minor, major).
//
// [matrix] - Per-folder combination matrix and the install/test lifecycle
// of a single combination.
//
// [schedule] - Longest-first scheduler with separate run and install
// concurrency limits.
//
// [suite] - Orchestration: prepare, resolve, schedule.
//
// ## Infrastructure
//
// [integrations] - Registry clients (npm, PyPI, crates.io, Go proxy) with
// cached, retried HTTP access.
//
// [cache] - Cache backends: file, Redis and a no-op cache.
//
// [proc] - Command execution with environment and exit-code handling.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for registry traffic and suite stages.
//
// [meta]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/meta
// [resolve]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/resolve
// [matrix]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/matrix
// [schedule]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/schedule
// [suite]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/suite
// [integrations]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/cache
// [proc]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/proc
// [errors]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tav/pkg/observability
package pkg
