package meta

import (
	"slices"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"latest", KindLatest},
		{"1.2.3", KindStatic},
		{"1.2", KindStatic},
		{"10", KindStatic},
		{"1.0.0-beta.1", KindStatic},
		{"1", KindRange},
		{"3.x", KindRange},
		{"1.2.", KindRange},
		{"^1.0.0", KindRange},
		{">=2 <3", KindRange},
		{"~1.2.3", KindRange},
		{"*", KindRange},
		{"Latest", KindRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpecsAdd(t *testing.T) {
	s := NewSpecs()
	s.Add("express", "^4.0.0")
	s.Add("koa", "latest")
	s.Add("express", "3.21.2")
	s.Add("express", "^4.0.0")
	s.Add("express", "latest")

	if got := s.Names(); !slices.Equal(got, []string{"express", "koa"}) {
		t.Errorf("Names() = %v", got)
	}

	express, ok := s.Get("express")
	if !ok {
		t.Fatal("express missing")
	}
	if !slices.Equal(express.Ranges, []string{"^4.0.0", "^4.0.0"}) {
		t.Errorf("Ranges = %v", express.Ranges)
	}
	if !slices.Equal(express.Static, []string{"3.21.2"}) {
		t.Errorf("Static = %v", express.Static)
	}
	if !express.Latest {
		t.Error("Latest should be set")
	}

	koa, _ := s.Get("koa")
	if !koa.Latest || len(koa.Ranges) != 0 || len(koa.Static) != 0 {
		t.Errorf("koa = %+v", koa)
	}
}

func TestSpecsNamesIsCopy(t *testing.T) {
	s := NewSpecs()
	s.Add("a", "1.0.0")
	names := s.Names()
	names[0] = "b"
	if s.Names()[0] != "a" {
		t.Error("Names() must not expose internal order")
	}
}

func TestBuild(t *testing.T) {
	decls := []Declaration{
		{Folder: "a", Tests: []Test{
			{Name: "one", Packages: Packages{
				{Name: "mysql", Specifier: Specifier{Versions: "^2.0.0"}},
				{Name: "redis", Specifier: Specifier{Versions: "latest"}},
			}},
		}},
		{Folder: "b", Tests: []Test{
			{Name: "two", Packages: Packages{
				{Name: "pg", Specifier: Specifier{Versions: "8.7.1"}},
				{Name: "mysql", Specifier: Specifier{Versions: "1.x"}},
			}},
		}},
	}

	specs := Build(decls)
	if got := specs.Names(); !slices.Equal(got, []string{"mysql", "redis", "pg"}) {
		t.Errorf("Names() = %v", got)
	}
	mysql, _ := specs.Get("mysql")
	if !slices.Equal(mysql.Ranges, []string{"^2.0.0", "1.x"}) {
		t.Errorf("mysql ranges = %v", mysql.Ranges)
	}
	if specs.Len() != 3 {
		t.Errorf("Len() = %d", specs.Len())
	}
}

func TestBuildEmpty(t *testing.T) {
	if n := Build(nil).Len(); n != 0 {
		t.Errorf("Build(nil).Len() = %d", n)
	}
}

func TestPackageSpecEmpty(t *testing.T) {
	if !(&PackageSpec{Name: "x"}).Empty() {
		t.Error("spec without requirements should be empty")
	}
	if (&PackageSpec{Name: "x", Latest: true}).Empty() {
		t.Error("latest spec is not empty")
	}
}
