package matrix

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/meta"
	"github.com/matzehuels/tav/pkg/resolve"
)

// Pin is one package at one version.
type Pin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (p Pin) String() string { return p.Name + "@" + p.Version }

// Combo is one combination of package versions, in declaration order.
type Combo []Pin

// String renders the combo as space-separated name@version pairs.
func (c Combo) String() string {
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// narrow returns the resolved versions a single test specifier covers.
func narrow(name, specifier string, resolved *resolve.Resolved) ([]string, error) {
	switch meta.Classify(specifier) {
	case meta.KindStatic:
		return []string{specifier}, nil
	case meta.KindLatest:
		v, ok := resolved.Get(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "%s was not resolved", name)
		}
		return []string{v.Latest}, nil
	}

	v, ok := resolved.Get(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "%s was not resolved", name)
	}
	c, err := semver.NewConstraint(specifier)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDeclaration, err, "%s: invalid range %q", name, specifier)
	}
	var out []string
	for _, raw := range v.Versions {
		if sv, err := semver.NewVersion(raw); err == nil && c.Check(sv) {
			out = append(out, raw)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeNoVersions, "%s: no resolved version matches %q", name, specifier)
	}
	return out, nil
}

// product enumerates the cartesian product of per-package version lists,
// varying the last package fastest.
func product(names []string, versions [][]string) []Combo {
	if len(names) == 0 {
		return nil
	}
	total := 1
	for _, vs := range versions {
		total *= len(vs)
	}
	out := make([]Combo, 0, total)
	idx := make([]int, len(names))
	for range total {
		combo := make(Combo, len(names))
		for i, name := range names {
			combo[i] = Pin{Name: name, Version: versions[i][idx[i]]}
		}
		out = append(out, combo)
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(versions[i]) {
				break
			}
			idx[i] = 0
		}
	}
	return out
}
