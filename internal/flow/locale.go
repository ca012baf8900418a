package flow

import (
	"fmt"
	"log/slog"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

//go:embed locales.yaml
var localeConfig []byte

// Table maps a language to its user-facing strings. Read-only after
// construction.
type Table struct {
	strings map[models.Language]map[string]string
}

// parseTable decodes the embedded locale document and verifies every
// supported language carries the same, non-empty key set.
func parseTable() (*Table, error) {
	var raw map[models.Language]map[string]string
	if err := yaml.Unmarshal(localeConfig, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse locales: %w", err)
	}

	t := &Table{strings: raw}
	for _, lang := range models.Languages {
		entries, ok := raw[lang]
		if !ok {
			return nil, fmt.Errorf("%w: language %q has no entries", models.ErrMissingTranslation, lang)
		}
		for key, value := range entries {
			if value == "" {
				return nil, fmt.Errorf("%w: empty string for %q in %q", models.ErrMissingTranslation, key, lang)
			}
		}
	}

	// Every key present in any language must be present in all of them.
	for lang, entries := range raw {
		for key := range entries {
			for _, other := range models.Languages {
				if _, ok := raw[other][key]; !ok {
					return nil, fmt.Errorf("%w: %q present in %q but missing in %q", models.ErrMissingTranslation, key, lang, other)
				}
			}
		}
	}

	slog.Debug("localization table parsed", "languages", len(raw), "keys", len(raw[models.LanguageEnglish]))
	return t, nil
}

// Localize resolves key for the given language.
func (t *Table) Localize(key string, lang models.Language) (string, error) {
	entries, ok := t.strings[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownLanguage, lang)
	}
	value, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %q for %q", models.ErrMissingTranslation, key, lang)
	}
	return value, nil
}

// has reports whether key exists for every supported language.
func (t *Table) has(key string) bool {
	for _, lang := range models.Languages {
		if _, ok := t.strings[lang][key]; !ok {
			return false
		}
	}
	return true
}
