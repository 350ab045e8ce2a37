// Package data loads the display tables mapping content identifiers
// to human readable names and descriptions.
package data

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pn2s/factory/internal/ident"
)

// Entry is the display text for one identifier.
type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type tableFile struct {
	Entries map[string]Entry `yaml:"entries"`
}

// Table maps "namespace:key" identifiers to display text. It is a
// presentation overlay; identifiers missing from it fall back to a
// title-cased key.
type Table struct {
	entries map[string]Entry
}

//go:embed defaults.yaml
var defaultsYAML []byte

// LoadTable builds a table from the built-in defaults plus the given
// files, merged in order with later entries winning.
func LoadTable(paths ...string) (*Table, error) {
	t := &Table{entries: make(map[string]Entry)}
	if err := t.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("builtin display table: %w", err)
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read display table: %w", err)
		}
		if err := t.merge(raw); err != nil {
			return nil, fmt.Errorf("display table %s: %w", path, err)
		}
	}
	return t, nil
}

func (t *Table) merge(raw []byte) error {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	for k, e := range f.Entries {
		t.entries[k] = e
	}
	return nil
}

// Len reports the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// NameFor resolves the display name of id, falling back to the
// title-cased key when the table has no entry.
func (t *Table) NameFor(pool *ident.Pool, id ident.ID) string {
	if e, ok := t.entries[pool.IDString(id)]; ok && e.Name != "" {
		return e.Name
	}
	return pool.DisplayName(id)
}

// DescriptionFor resolves the description of id, empty when the table
// has none.
func (t *Table) DescriptionFor(pool *ident.Pool, id ident.ID) string {
	return t.entries[pool.IDString(id)].Description
}
