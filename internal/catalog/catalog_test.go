package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
	if c.Program != "docker" {
		t.Errorf("expected docker program, got %q", c.Program)
	}
	if len(c.Entries) < 40 {
		t.Errorf("expected the full catalog, got %d entries", len(c.Entries))
	}
	for _, e := range c.Entries {
		if e.Group == "" {
			t.Errorf("entry %q has no group", e.Label)
		}
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.Entries[0].Template = "mutated"
	if Default().Entries[0].Template == "mutated" {
		t.Error("Default shares entries between calls")
	}
}

func TestRender(t *testing.T) {
	c := Default()

	pull, ok := c.Find("Pull Image (name)")
	if !ok {
		t.Fatal("pull entry missing")
	}
	got, err := pull.Render("nginx:latest")
	if err != nil || got != "docker pull nginx:latest" {
		t.Errorf("Render = %q, %v", got, err)
	}

	tag, _ := c.Find("Tag Image")
	got, err = tag.Render("  app:1 registry/app:1 ")
	if err != nil || got != "docker tag app:1 registry/app:1" {
		t.Errorf("multi-word Render = %q, %v", got, err)
	}

	if _, err := pull.Render("   "); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}

	info, _ := c.Find("Docker Info")
	if got, err := info.Render("ignored"); err != nil || got != "docker info" {
		t.Errorf("argument-free Render = %q, %v", got, err)
	}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"missing placeholder", []Entry{{Label: "Pull", Template: "docker pull", RequiresArgument: true}}},
		{"two placeholders", []Entry{{Label: "Tag", Template: "docker tag {arg} {arg}", RequiresArgument: true}}},
		{"stray placeholder", []Entry{{Label: "Info", Template: "docker info {arg}"}}},
		{"empty label", []Entry{{Label: " ", Template: "docker info"}}},
		{"empty template", []Entry{{Label: "Info"}}},
		{"duplicate label", []Entry{
			{Label: "Info", Template: "docker info"},
			{Label: "Info", Template: "docker version"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("docker", tt.entries)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := New("", nil); err == nil {
		t.Error("expected empty program rejected")
	}
}

func TestParseAndLoad(t *testing.T) {
	doc := `
program: podman
entries:
  - label: List Pods
    group: pods
    template: podman pod ls
  - label: Inspect Pod
    group: pods
    template: podman pod inspect {arg}
    requires_argument: true
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Program != "podman" || len(c.Entries) != 2 {
		t.Fatalf("unexpected catalog %+v", c)
	}
	if !c.Entries[1].RequiresArgument {
		t.Error("expected requires_argument decoded")
	}

	if _, err := Parse([]byte("entries:\n  - label: Bad\n    template: x {arg}\n")); err == nil {
		t.Error("expected validation error from Parse")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(c.Entries) != len(Default().Entries) {
		t.Errorf("entry count changed: %d", len(c.Entries))
	}
}

func TestGroups(t *testing.T) {
	c := Default()
	groups := c.Groups()
	if groups[0] != "basics" {
		t.Errorf("expected basics first, got %v", groups)
	}
	total := 0
	for _, g := range groups {
		total += len(c.InGroup(g))
	}
	if total != len(c.Entries) {
		t.Errorf("groups cover %d of %d entries", total, len(c.Entries))
	}
}

func TestSearch(t *testing.T) {
	c := Default()
	results := c.Search("hello")
	if len(results) == 0 || results[0].Label != "Run hello-world" {
		t.Errorf("expected hello-world first, got %+v", results)
	}
	if got := c.Search("zzzzqqq"); len(got) != 0 {
		t.Errorf("expected no results, got %+v", got)
	}
}

func TestSuggest(t *testing.T) {
	c := Default()
	got := c.Suggest("stop containr", 3)
	if len(got) == 0 || got[0] != "Stop Container" {
		t.Errorf("expected 'Stop Container' first, got %v", got)
	}
	if len(got) > 3 {
		t.Errorf("expected at most 3 suggestions, got %d", len(got))
	}
	if none := c.Suggest("qqqqqqqqqqqqqqqqqq", 5); len(none) != 0 {
		t.Errorf("expected no suggestions, got %v", none)
	}
}
