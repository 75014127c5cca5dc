package meta

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tav/pkg/errors"
)

// Specifier is a package's version requirement. In YAML it is either a
// plain string or an object with a "versions" field.
type Specifier struct {
	Versions string `yaml:"versions"`
}

// UnmarshalYAML accepts both the scalar and the object form.
func (s *Specifier) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		s.Versions = strings.TrimSpace(n.Value)
		return nil
	}
	type plain Specifier
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	s.Versions = strings.TrimSpace(p.Versions)
	return nil
}

// Package is one entry of a test's "packages" mapping.
type Package struct {
	Name      string
	Specifier Specifier
}

// Packages keeps the order of the YAML mapping it was decoded from.
type Packages []Package

// UnmarshalYAML decodes a mapping of package name to specifier.
func (p *Packages) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: packages must be a mapping", n.Line)
	}
	out := make(Packages, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var spec Specifier
		if err := n.Content[i+1].Decode(&spec); err != nil {
			return err
		}
		out = append(out, Package{Name: n.Content[i].Value, Specifier: spec})
	}
	*p = out
	return nil
}

// Test is one declared test: the packages whose versions form its matrix
// and the commands that validate one combination.
type Test struct {
	Name     string            `yaml:"name"`
	Packages Packages          `yaml:"packages"`
	Commands []string          `yaml:"commands"`
	Env      map[string]string `yaml:"env"`
}

// Declaration is the parsed .tav.yml of one folder.
type Declaration struct {
	Folder string
	Tests  []Test
}

// ParseDeclaration decodes and validates the YAML content of a .tav.yml.
// Tests without a name are named after their packages.
func ParseDeclaration(folder string, data []byte) (Declaration, error) {
	decl := Declaration{Folder: folder}
	if err := yaml.Unmarshal(data, &decl.Tests); err != nil {
		return decl, errors.Wrap(errors.ErrCodeInvalidDeclaration, err, "%s: parse", folder)
	}
	for i := range decl.Tests {
		if decl.Tests[i].Name == "" {
			decl.Tests[i].Name = decl.Tests[i].Packages.names()
		}
	}
	return decl, decl.Validate()
}

// Validate checks that every test names at least one package with a
// non-empty specifier and at least one command, and that test names are
// unique within the folder.
func (d Declaration) Validate() error {
	if len(d.Tests) == 0 {
		return errors.New(errors.ErrCodeInvalidDeclaration, "%s: no tests declared", d.Folder)
	}
	seen := make(map[string]bool, len(d.Tests))
	for i, t := range d.Tests {
		if len(t.Packages) == 0 {
			return errors.New(errors.ErrCodeInvalidDeclaration, "%s: test #%d has no packages", d.Folder, i+1)
		}
		if seen[t.Name] {
			return errors.New(errors.ErrCodeInvalidDeclaration, "%s: duplicate test %q", d.Folder, t.Name)
		}
		seen[t.Name] = true
		for _, p := range t.Packages {
			if err := errors.ValidatePackageName(p.Name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDeclaration, err, "%s: test %q", d.Folder, t.Name)
			}
			if p.Specifier.Versions == "" {
				return errors.New(errors.ErrCodeInvalidDeclaration, "%s: test %q: package %s has no version specifier", d.Folder, t.Name, p.Name)
			}
		}
		if len(t.Commands) == 0 {
			return errors.New(errors.ErrCodeInvalidDeclaration, "%s: test %q has no commands", d.Folder, t.Name)
		}
	}
	return nil
}

func (p Packages) names() string {
	names := make([]string, len(p))
	for i, pkg := range p {
		names[i] = pkg.Name
	}
	return strings.Join(names, "+")
}
