package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadLayer reads a TOML config file at path into a named Layer,
// transparently migrating it first if it matches the legacy flat schema.
// A missing file is not an error: it yields an empty layer so the caller
// can unconditionally Add a "user" and a "project" layer regardless of
// whether either config file actually exists.
func LoadLayer(name, path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layer{Name: name}, nil
		}
		return Layer{}, err
	}

	if doc, migrated, err := MigrateLegacy(data); err != nil {
		return Layer{}, err
	} else if migrated {
		return Layer{Name: name, Doc: doc}, nil
	}

	var doc layerDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Layer{}, err
	}
	return Layer{Name: name, Doc: doc}, nil
}

// MergeIgnorePatterns folds .untangleignore-style patterns into a layer's
// targeting.exclude, attributing the resulting exclude list to that layer
// (spec §4.7: ignore-file patterns are accounted for as part of project
// configuration, not as a separate layer).
func MergeIgnorePatterns(l Layer, patterns []string) Layer {
	if len(patterns) == 0 {
		return l
	}
	existing := []string{}
	if l.Doc.Targeting.Exclude != nil {
		existing = *l.Doc.Targeting.Exclude
	}
	merged := append(append([]string{}, existing...), patterns...)
	l.Doc.Targeting.Exclude = &merged
	return l
}
