package checklist

import (
	"bytes"
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"speclens/domain/audit"
	"speclens/domain/core"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Library is the process-wide, immutable checklist: every rule for every
// category, validated once at startup. Safe for unsynchronized concurrent
// reads; callers must not mutate returned slices.
type Library struct {
	version    string
	rules      []Rule
	byCategory map[audit.Category][]Rule
}

type libraryFile struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Default builds the library from the compiled-in rule set.
func Default() (*Library, error) {
	return FromYAML(defaultRulesYAML)
}

// MustDefault is Default for contexts where the embedded rules failing to
// load is unrecoverable (tests, tooling).
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// LoadFile builds the library from an external YAML definition, for
// deployments that override the compiled-in rules.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigErrorf("read checklist file %s: %v", path, err)
	}
	return FromYAML(data)
}

// FromYAML parses a rule definition document and validates it into a
// Library. Unknown YAML fields are rejected so typos surface at startup.
func FromYAML(data []byte) (*Library, error) {
	var file libraryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, core.NewConfigErrorf("parse checklist yaml: %v", err)
	}
	return NewLibrary(file.Version, file.Rules)
}

// NewLibrary validates rule definitions and binds their predicates.
// Validation failures are configuration errors: duplicated rule ids,
// unknown categories or checks, non-positive weights, and per-category
// weights that do not sum to the category's declared max all abort startup.
func NewLibrary(version string, rules []Rule) (*Library, error) {
	if strings.TrimSpace(version) == "" {
		return nil, core.NewConfigError("checklist version is required")
	}
	if len(rules) == 0 {
		return nil, core.NewConfigError("checklist has no rules")
	}

	lib := &Library{
		version:    version,
		rules:      make([]Rule, 0, len(rules)),
		byCategory: make(map[audit.Category][]Rule, len(audit.Categories())),
	}

	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, core.NewConfigError("rule with empty id")
		}
		if seen[id] {
			return nil, core.NewConfigErrorf("duplicate rule id %q", id)
		}
		seen[id] = true
		r.ID = id

		if !r.Category.Valid() {
			return nil, core.NewConfigErrorf("rule %s: unknown category %q", id, r.Category)
		}
		if r.Weight <= 0 {
			return nil, core.NewConfigErrorf("rule %s: weight must be positive, got %d", id, r.Weight)
		}
		if r.Severity != "" && !r.Severity.Valid() {
			return nil, core.NewConfigErrorf("rule %s: unknown severity %q", id, r.Severity)
		}
		if strings.TrimSpace(r.Message) == "" {
			return nil, core.NewConfigErrorf("rule %s: message is required", id)
		}

		pred, err := buildPredicate(r)
		if err != nil {
			return nil, core.NewConfigErrorf("%v", err)
		}
		r.predicate = pred

		lib.rules = append(lib.rules, r)
		lib.byCategory[r.Category] = append(lib.byCategory[r.Category], r)
	}

	// Weight conservation: every category's rule weights must sum exactly
	// to its declared max, and every category must be covered.
	for _, c := range audit.Categories() {
		sum := 0
		for _, r := range lib.byCategory[c] {
			sum += r.Weight
		}
		if sum != c.MaxPoints() {
			return nil, core.NewConfigErrorf("category %s: rule weights sum to %d, want %d", c, sum, c.MaxPoints())
		}
	}

	return lib, nil
}

// Version returns the checklist revision stamped onto reports.
func (l *Library) Version() string { return l.version }

// RulesFor returns the ordered rules for one category.
func (l *Library) RulesFor(c audit.Category) []Rule {
	return l.byCategory[c]
}

// AllCategories returns every category in canonical weight order.
func (l *Library) AllCategories() []audit.Category {
	return audit.Categories()
}

// Rules returns every rule in library order.
func (l *Library) Rules() []Rule { return l.rules }

// Descriptor is the serializable view of the library for the checklist
// endpoints and the CLI.
type Descriptor struct {
	Version    string               `json:"version"`
	Categories []CategoryDescriptor `json:"categories"`
}

// CategoryDescriptor describes one category and its rules.
type CategoryDescriptor struct {
	Name      audit.Category `json:"name"`
	Title     string         `json:"title"`
	MaxPoints int            `json:"max_points"`
	Rules     []Rule         `json:"rules"`
}

// Describe projects the library in canonical order.
func (l *Library) Describe() Descriptor {
	d := Descriptor{Version: l.version}
	for _, c := range audit.Categories() {
		d.Categories = append(d.Categories, CategoryDescriptor{
			Name:      c,
			Title:     c.Title(),
			MaxPoints: c.MaxPoints(),
			Rules:     l.byCategory[c],
		})
	}
	return d
}
