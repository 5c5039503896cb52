// Package rules loads declarative rewrite rules from TOML files and
// resolves which rules apply to a file's language, in priority order.
package rules

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nymphium/graft/internal/languages"
)

// Rule is one declarative rewrite: a structural query and the template
// that replaces each match. Priority orders rules within a run; higher
// runs first. Inline rules from flags default to priority 0.
type Rule struct {
	Name     string `toml:"name"`
	Language string `toml:"language"`
	Priority int    `toml:"priority"`
	Query    string `toml:"query"`
	Template string `toml:"template"`
}

// File is the top-level rule file shape: a list of [[rules]] tables.
type File struct {
	Rules []Rule `toml:"rules"`
}

// Load reads and decodes a TOML rule file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read rule file %q: %w", path, err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse rule file %q: %w", path, err)
	}

	for i, r := range f.Rules {
		if r.Language == "" {
			return File{}, fmt.Errorf("rule file %q: rule %d (%s) has no language", path, i, ruleLabel(r))
		}
		if r.Query == "" || r.Template == "" {
			return File{}, fmt.Errorf("rule file %q: rule %d (%s) needs both query and template", path, i, ruleLabel(r))
		}
	}
	return f, nil
}

func ruleLabel(r Rule) string {
	if r.Name != "" {
		return r.Name
	}
	return "unnamed"
}

// Resolve combines file rules and inline rules, keeps those whose language
// matches label (names and extensions are interchangeable via the
// registry's alias table), and sorts by priority descending. The sort is
// stable, so equal priorities keep declaration order with file rules
// first.
func Resolve(fileRules, inline []Rule, label string) ([]Rule, error) {
	canonical, err := languages.Canonical(label)
	if err != nil {
		return nil, err
	}

	out := make([]Rule, 0, len(fileRules)+len(inline))
	for _, r := range fileRules {
		ruleLang, err := languages.Canonical(r.Language)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", ruleLabel(r), err)
		}
		if ruleLang == canonical {
			out = append(out, r)
		}
	}
	for _, r := range inline {
		r.Language = canonical
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}
