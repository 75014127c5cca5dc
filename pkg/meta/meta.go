// Package meta aggregates the per-package version requirements declared by
// test folders.
//
// Each folder's .tav.yml is a [Declaration]: a list of tests, each naming
// the packages it depends on with a version specifier. [Build] folds every
// declaration into [Specs], one [PackageSpec] per package, which the
// resolver turns into concrete version lists.
//
// Specifiers are classified syntactically by [Classify]:
//
//	latest        → Latest
//	1.2.3, 1.2    → Static (pinned, used verbatim)
//	^1.0.0, 3.x   → Ranges (semver constraints)
package meta

import (
	"regexp"
)

// staticPin matches specifiers that start with a digit and do not end in
// "." or "x". "1.2" is a pin; "3.x" and "1" are ranges.
var staticPin = regexp.MustCompile(`^\d.*[^.x]$`)

// Kind is the classification of a version specifier.
type Kind int

const (
	KindRange Kind = iota
	KindStatic
	KindLatest
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindStatic:
		return "static"
	default:
		return "range"
	}
}

// Classify returns the kind of specifier v.
func Classify(v string) Kind {
	switch {
	case v == "latest":
		return KindLatest
	case staticPin.MatchString(v):
		return KindStatic
	default:
		return KindRange
	}
}

// PackageSpec is the aggregated requirement for one package across every
// test that references it. Ranges and Static keep discovery order and may
// contain duplicates; Latest is only ever set.
type PackageSpec struct {
	Name   string
	Ranges []string
	Latest bool
	Static []string
}

// Empty reports whether the spec requests no versions at all.
func (p *PackageSpec) Empty() bool {
	return !p.Latest && len(p.Ranges) == 0 && len(p.Static) == 0
}

// Specs maps package names to their [PackageSpec] in first-reference order.
// The zero value is not usable; create with [NewSpecs].
type Specs struct {
	order  []string
	byName map[string]*PackageSpec
}

// NewSpecs returns an empty Specs.
func NewSpecs() *Specs {
	return &Specs{byName: make(map[string]*PackageSpec)}
}

// Add records specifier for package name, creating the spec on first
// reference, and returns it.
func (s *Specs) Add(name, specifier string) *PackageSpec {
	spec, ok := s.byName[name]
	if !ok {
		spec = &PackageSpec{Name: name}
		s.byName[name] = spec
		s.order = append(s.order, name)
	}
	switch Classify(specifier) {
	case KindLatest:
		spec.Latest = true
	case KindStatic:
		spec.Static = append(spec.Static, specifier)
	default:
		spec.Ranges = append(spec.Ranges, specifier)
	}
	return spec
}

// Get returns the spec for name.
func (s *Specs) Get(name string) (*PackageSpec, bool) {
	spec, ok := s.byName[name]
	return spec, ok
}

// Names returns package names in first-reference order.
func (s *Specs) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of packages.
func (s *Specs) Len() int { return len(s.order) }

// Build aggregates all declarations into a fresh Specs. Declarations are
// visited in order, tests in file order and packages in declaration order.
func Build(decls []Declaration) *Specs {
	specs := NewSpecs()
	for _, d := range decls {
		for _, t := range d.Tests {
			for _, p := range t.Packages {
				specs.Add(p.Name, p.Specifier.Versions)
			}
		}
	}
	return specs
}
