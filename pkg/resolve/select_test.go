package resolve

import (
	"slices"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/integrations"
	"github.com/matzehuels/tav/pkg/meta"
)

func TestSelect(t *testing.T) {
	available := []string{
		"1.0.0", "1.0.1", "1.1.0", "1.1.1", "1.2.0-beta.1",
		"2.0.0", "2.1.0", "2.1.3", "3.0.0-rc.1", "garbage",
	}

	tests := []struct {
		name string
		mode Mode
		spec meta.PackageSpec
		want []string
	}{
		{
			name: "minor picks highest per line",
			mode: ModeMinor,
			spec: meta.PackageSpec{Ranges: []string{">=1.0.0"}},
			want: []string{"1.0.1", "1.1.1", "2.0.0", "2.1.3"},
		},
		{
			name: "major picks highest per major",
			mode: ModeMajor,
			spec: meta.PackageSpec{Ranges: []string{">=1.0.0"}},
			want: []string{"1.1.1", "2.1.3"},
		},
		{
			name: "patch keeps every stable match",
			mode: ModePatch,
			spec: meta.PackageSpec{Ranges: []string{"^1.0.0"}},
			want: []string{"1.0.0", "1.0.1", "1.1.0", "1.1.1"},
		},
		{
			name: "all keeps every match",
			mode: ModeAll,
			spec: meta.PackageSpec{Ranges: []string{"~2.1.0"}},
			want: []string{"2.1.0", "2.1.3"},
		},
		{
			name: "any range matches",
			mode: ModeMajor,
			spec: meta.PackageSpec{Ranges: []string{"^1.0.0", "^2.0.0"}},
			want: []string{"1.1.1", "2.1.3"},
		},
		{
			name: "overlapping ranges reduced separately",
			mode: ModeMinor,
			spec: meta.PackageSpec{Ranges: []string{">=1.0.0 <1.0.1", "^1.0.0"}},
			want: []string{"1.0.0", "1.0.1", "1.1.1"},
		},
		{
			name: "prerelease only when range names one",
			mode: ModeAll,
			spec: meta.PackageSpec{Ranges: []string{">=3.0.0-rc.0"}},
			want: []string{"3.0.0-rc.1"},
		},
		{
			name: "latest skips prereleases",
			mode: ModeMinor,
			spec: meta.PackageSpec{Latest: true},
			want: []string{"2.1.3"},
		},
		{
			name: "pins added verbatim",
			mode: ModeMinor,
			spec: meta.PackageSpec{Static: []string{"1.0.0", "9.9.9", "1.0.0"}},
			want: []string{"1.0.0", "9.9.9"},
		},
		{
			name: "union deduplicated and sorted",
			mode: ModeMinor,
			spec: meta.PackageSpec{Ranges: []string{"^2.0.0"}, Latest: true, Static: []string{"1.0.0"}},
			want: []string{"1.0.0", "2.0.0", "2.1.3"},
		},
		{
			name: "non-semver pins sort last",
			mode: ModeMinor,
			spec: meta.PackageSpec{Static: []string{"2020.01.b", "1.0.0"}},
			want: []string{"1.0.0", "2020.01.b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			spec.Name = "pkg"
			got, err := Select(available, tt.mode, &spec)
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectEveryRangeKeepsAVersion(t *testing.T) {
	available := []string{"1.0.0", "1.0.1", "1.0.2", "1.0.3", "1.0.4", "1.1.0"}
	spec := &meta.PackageSpec{Name: "a", Ranges: []string{">=1.0.0 <1.0.3", "^1.0.0"}}

	for _, mode := range Modes {
		got, err := Select(available, mode, spec)
		if err != nil {
			t.Fatalf("%s: Select() error: %v", mode, err)
		}
		for _, r := range spec.Ranges {
			c, _ := semver.NewConstraint(r)
			if !slices.ContainsFunc(got, func(v string) bool { return c.Check(semver.MustParse(v)) }) {
				t.Errorf("%s: Select() = %v has no version for %q", mode, got, r)
			}
		}
	}

	got, _ := Select(available, ModeMinor, spec)
	if want := []string{"1.0.2", "1.0.4", "1.1.0"}; !slices.Equal(got, want) {
		t.Errorf("Select() = %v, want %v", got, want)
	}
}

func TestSelectReleasesSkipsDeprecatedLatest(t *testing.T) {
	releases := map[string]integrations.Release{
		"1.0.0": {},
		"1.1.0": {},
		"1.2.0": {Deprecated: true},
	}
	spec := &meta.PackageSpec{Name: "a", Latest: true, Ranges: []string{"^1.0.0"}}

	got, err := SelectReleases(releases, ModeAll, spec)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1.0.0", "1.1.0", "1.2.0"}; !slices.Equal(got, want) {
		t.Errorf("SelectReleases() = %v, want %v (ranges keep deprecated)", got, want)
	}

	latestOnly := &meta.PackageSpec{Name: "a", Latest: true}
	got, _ = SelectReleases(releases, ModeMinor, latestOnly)
	if !slices.Equal(got, []string{"1.1.0"}) {
		t.Errorf("latest = %v, want [1.1.0]", got)
	}

	allDeprecated := map[string]integrations.Release{"1.0.0": {Deprecated: true}, "2.0.0": {Deprecated: true}}
	got, _ = SelectReleases(allDeprecated, ModeMinor, latestOnly)
	if !slices.Equal(got, []string{"2.0.0"}) {
		t.Errorf("latest with every release deprecated = %v, want [2.0.0]", got)
	}
}

func TestSelectNoVersions(t *testing.T) {
	spec := &meta.PackageSpec{Name: "pkg", Ranges: []string{"^5.0.0"}}
	_, err := Select([]string{"1.0.0"}, ModeMinor, spec)
	if !errors.Is(err, errors.ErrCodeNoVersions) {
		t.Errorf("Select() error = %v, want NO_VERSIONS", err)
	}

	_, err = Select([]string{"1.0.0-alpha"}, ModeMinor, &meta.PackageSpec{Name: "pkg", Latest: true})
	if !errors.Is(err, errors.ErrCodeNoVersions) {
		t.Errorf("latest with only prereleases: error = %v, want NO_VERSIONS", err)
	}
}

func TestSelectUnknownMode(t *testing.T) {
	spec := &meta.PackageSpec{Name: "pkg", Latest: true}
	_, err := Select([]string{"1.0.0"}, Mode("every"), spec)
	if !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("Select() error = %v, want INVALID_OPTIONS", err)
	}
}

func TestSelectInvalidRange(t *testing.T) {
	spec := &meta.PackageSpec{Name: "pkg", Ranges: []string{"not a range"}}
	if _, err := Select([]string{"1.0.0"}, ModeMinor, spec); err == nil {
		t.Error("Select() should reject an unparsable range")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		if got, err := ParseMode(string(m)); err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("weekly"); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("ParseMode(weekly) error = %v", err)
	}
}

func TestSortVersions(t *testing.T) {
	vs := []string{"b", "10.0.0", "2.0.0", "a", "2.0.0-rc.1", "v1.5.0"}
	SortVersions(vs)
	want := []string{"v1.5.0", "2.0.0-rc.1", "2.0.0", "10.0.0", "a", "b"}
	if !slices.Equal(vs, want) {
		t.Errorf("SortVersions() = %v, want %v", vs, want)
	}
}
