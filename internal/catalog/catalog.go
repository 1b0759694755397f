// Package catalog holds the curated, menu-driven command catalog.
//
// Each entry maps a human-readable label to a command template. A template
// holds exactly one {arg} placeholder when the entry requires an argument and
// none otherwise; catalogs are validated when they are loaded.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// Placeholder is the token replaced by the user's argument.
const Placeholder = "{arg}"

// ErrMissingArgument is returned when an entry needs an argument and none was given.
var ErrMissingArgument = errors.New("argument required")

// ValidationError describes an entry that breaks the catalog invariants.
type ValidationError struct {
	Label  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Label == "" {
		return "invalid catalog: " + e.Reason
	}
	return fmt.Sprintf("invalid catalog entry %q: %s", e.Label, e.Reason)
}

// Entry is one catalog command.
type Entry struct {
	Label            string `yaml:"label"`
	Group            string `yaml:"group,omitempty"`
	Template         string `yaml:"template"`
	RequiresArgument bool   `yaml:"requires_argument"`
}

// Render produces the command for this entry. The argument is inserted
// verbatim and may hold several words. Entries without a placeholder ignore it.
func (e Entry) Render(arg string) (string, error) {
	if !e.RequiresArgument {
		return e.Template, nil
	}
	if strings.TrimSpace(arg) == "" {
		return "", fmt.Errorf("%s: %w", e.Label, ErrMissingArgument)
	}
	return strings.Replace(e.Template, Placeholder, strings.TrimSpace(arg), 1), nil
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Label) == "" {
		return &ValidationError{Reason: "entry with empty label"}
	}
	if strings.TrimSpace(e.Template) == "" {
		return &ValidationError{Label: e.Label, Reason: "empty template"}
	}
	n := strings.Count(e.Template, Placeholder)
	switch {
	case e.RequiresArgument && n != 1:
		return &ValidationError{Label: e.Label, Reason: fmt.Sprintf("requires an argument but template has %d placeholders", n)}
	case !e.RequiresArgument && n != 0:
		return &ValidationError{Label: e.Label, Reason: "takes no argument but template has a placeholder"}
	}
	return nil
}

// Catalog is an ordered list of entries for one program.
type Catalog struct {
	Program string  `yaml:"program"`
	Entries []Entry `yaml:"entries"`
}

// New validates entries and builds a catalog.
func New(program string, entries []Entry) (*Catalog, error) {
	c := &Catalog{Program: program, Entries: entries}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every entry and label uniqueness, stopping at the first violation.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Program) == "" {
		return &ValidationError{Reason: "program name is empty"}
	}
	seen := make(map[string]struct{}, len(c.Entries))
	for _, e := range c.Entries {
		if err := e.validate(); err != nil {
			return err
		}
		if _, dup := seen[e.Label]; dup {
			return &ValidationError{Label: e.Label, Reason: "duplicate label"}
		}
		seen[e.Label] = struct{}{}
	}
	return nil
}

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if c.Program == "" {
		c.Program = "docker"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Labels returns the entry labels in catalog order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		labels[i] = e.Label
	}
	return labels
}

// Find looks an entry up by exact label.
func (c *Catalog) Find(label string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Groups returns group names in first-seen order.
func (c *Catalog) Groups() []string {
	var groups []string
	seen := map[string]bool{}
	for _, e := range c.Entries {
		if !seen[e.Group] {
			seen[e.Group] = true
			groups = append(groups, e.Group)
		}
	}
	return groups
}

// InGroup returns the entries of one group in catalog order.
func (c *Catalog) InGroup(group string) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.Group == group {
			out = append(out, e)
		}
	}
	return out
}

// Search fuzzy-matches query against labels, best match first.
func (c *Catalog) Search(query string) []Entry {
	matches := fuzzy.Find(query, c.Labels())
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.Entries[m.Index])
	}
	return out
}

// suggestMinSimilarity filters out labels that share little with the query.
const suggestMinSimilarity = 0.7

// Suggest returns up to n labels resembling label, most similar first.
func (c *Catalog) Suggest(label string, n int) []string {
	type scored struct {
		label string
		score float32
	}
	var ranked []scored
	query := strings.ToLower(label)
	for _, l := range c.Labels() {
		score, err := edlib.StringsSimilarity(query, strings.ToLower(l), edlib.JaroWinkler)
		if err != nil || score < suggestMinSimilarity {
			continue
		}
		ranked = append(ranked, scored{l, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.label
	}
	return out
}

// Marshal encodes the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
