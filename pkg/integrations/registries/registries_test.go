package registries

import (
	"slices"
	"testing"

	"github.com/matzehuels/tav/pkg/integrations"
)

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			r, err := New(name, integrations.Config{})
			if err != nil {
				t.Fatalf("New(%q) error: %v", name, err)
			}
			if r.Name() != name {
				t.Errorf("Name() = %q, want %q", r.Name(), name)
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	r, err := New("", integrations.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != Default {
		t.Errorf("New(\"\") = %q, want %q", r.Name(), Default)
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("maven", integrations.Config{}); err == nil {
		t.Error("New(maven) should fail")
	}
}

func TestNames(t *testing.T) {
	want := []string{"crates", "goproxy", "npm", "pypi"}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
