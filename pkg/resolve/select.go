package resolve

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/integrations"
	"github.com/matzehuels/tav/pkg/meta"
)

// Mode controls how range matches are reduced.
type Mode string

const (
	ModeAll   Mode = "all"   // every matching version
	ModePatch Mode = "patch" // every matching stable version
	ModeMinor Mode = "minor" // highest version per major.minor
	ModeMajor Mode = "major" // highest version per major
)

// Modes lists the valid modes.
var Modes = []Mode{ModeAll, ModePatch, ModeMinor, ModeMajor}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !slices.Contains(Modes, m) {
		return "", errors.New(errors.ErrCodeInvalidOptions, "unknown versions mode %q (want one of %v)", s, Modes)
	}
	return m, nil
}

type parsed struct {
	raw string
	v   *semver.Version
}

// Select reduces the available versions of a package to the list a test
// matrix should cover.
//
// Each of spec.Ranges is matched and reduced by mode on its own and the
// reductions are merged, so every range that matches anything keeps at
// least one version. spec.Latest adds the highest stable version and
// spec.Static pins are added verbatim. Versions that are not semver are
// ignored for ranges and latest. The result is deduplicated and sorted
// ascending, non-semver pins last. An empty result is a NO_VERSIONS error.
func Select(available []string, mode Mode, spec *meta.PackageSpec) ([]string, error) {
	return selectVersions(available, nil, mode, spec)
}

// SelectReleases is [Select] over a registry response. Deprecated or yanked
// releases are passed over when picking the latest version, unless every
// stable release is deprecated.
func SelectReleases(releases map[string]integrations.Release, mode Mode, spec *meta.PackageSpec) ([]string, error) {
	deprecated := make(map[string]bool)
	for v, r := range releases {
		if r.Deprecated {
			deprecated[v] = true
		}
	}
	return selectVersions(slices.Collect(maps.Keys(releases)), deprecated, mode, spec)
}

func selectVersions(available []string, deprecated map[string]bool, mode Mode, spec *meta.PackageSpec) ([]string, error) {
	if !slices.Contains(Modes, mode) {
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown versions mode %q", mode)
	}

	constraints := make([]*semver.Constraints, 0, len(spec.Ranges))
	for _, r := range spec.Ranges {
		c, err := semver.NewConstraint(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDeclaration, err, "%s: invalid range %q", spec.Name, r)
		}
		constraints = append(constraints, c)
	}

	versions := parseAll(available)
	selected := make(map[string]bool)

	for _, c := range constraints {
		var matches []parsed
		for _, p := range versions {
			if c.Check(p.v) {
				matches = append(matches, p)
			}
		}
		for _, p := range reduce(matches, mode) {
			selected[p.raw] = true
		}
	}
	if spec.Latest {
		if l, ok := latestStable(versions, deprecated); ok {
			selected[l.raw] = true
		}
	}
	for _, pin := range spec.Static {
		selected[pin] = true
	}

	if len(selected) == 0 {
		return nil, errors.New(errors.ErrCodeNoVersions, "%s: no versions match %s", spec.Name, describe(spec))
	}
	out := make([]string, 0, len(selected))
	for v := range selected {
		out = append(out, v)
	}
	SortVersions(out)
	return out, nil
}

// SortVersions sorts versions ascending by semver precedence. Strings that
// are not semver sort after all semver ones, lexically.
func SortVersions(vs []string) {
	slices.SortFunc(vs, func(a, b string) int {
		va, errA := semver.NewVersion(a)
		vb, errB := semver.NewVersion(b)
		switch {
		case errA == nil && errB == nil:
			if c := va.Compare(vb); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return cmp.Compare(a, b)
		}
	})
}

func parseAll(available []string) []parsed {
	out := make([]parsed, 0, len(available))
	for _, raw := range available {
		if v, err := semver.NewVersion(raw); err == nil {
			out = append(out, parsed{raw: raw, v: v})
		}
	}
	slices.SortFunc(out, func(a, b parsed) int { return a.v.Compare(b.v) })
	return out
}

// reduce expects matches sorted ascending.
func reduce(matches []parsed, mode Mode) []parsed {
	switch mode {
	case ModeAll:
		return matches
	case ModePatch:
		var out []parsed
		for _, p := range matches {
			if p.v.Prerelease() == "" {
				out = append(out, p)
			}
		}
		return out
	}

	line := func(v *semver.Version) string {
		if mode == ModeMajor {
			return fmt.Sprint(v.Major())
		}
		return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	}
	highest := make(map[string]parsed)
	var order []string
	for _, p := range matches {
		k := line(p.v)
		if _, ok := highest[k]; !ok {
			order = append(order, k)
		}
		highest[k] = p
	}
	out := make([]parsed, 0, len(order))
	for _, k := range order {
		out = append(out, highest[k])
	}
	return out
}

// latestStable returns the highest release without a prerelease tag,
// preferring ones that are not deprecated.
func latestStable(sorted []parsed, deprecated map[string]bool) (parsed, bool) {
	var fallback *parsed
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].v.Prerelease() != "" {
			continue
		}
		if !deprecated[sorted[i].raw] {
			return sorted[i], true
		}
		if fallback == nil {
			fallback = &sorted[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return parsed{}, false
}

func describe(spec *meta.PackageSpec) string {
	var parts []string
	parts = append(parts, spec.Ranges...)
	if spec.Latest {
		parts = append(parts, "latest")
	}
	return fmt.Sprintf("%v", parts)
}
