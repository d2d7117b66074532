// Package locale derives the user's two-letter language code from the
// environment and maps it to a default translation. The mapping is a plain
// data table so the sorter and resolver stay independent of any UI concern.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"biblescope/internal/api"
)

// languageDefaults maps a base language code to its canonical default
// translation module.
var languageDefaults = map[string]string{
	"en": "kjv",
	"fr": "oster",
}

// Detect returns the user's base language from the standard locale
// environment variables, defaulting to English.
func Detect() string {
	return DetectFrom(os.Getenv)
}

// DetectFrom is Detect with an injectable environment for tests. Precedence
// follows POSIX: LC_ALL, then LC_MESSAGES, then LANG.
func DetectFrom(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := getenv(key)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		// Locale values look like "fr_FR.UTF-8"; the tag parser wants the
		// codeset stripped.
		if i := strings.IndexByte(raw, '.'); i >= 0 {
			raw = raw[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
		if err != nil {
			continue
		}
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		return base.String()
	}
	return "en"
}

// DefaultTranslations resolves the language-based default set against the
// catalog: the mapped module when the catalog carries it, otherwise the first
// catalog entry in its current sort order. Empty only when the catalog is.
func DefaultTranslations(lang string, catalog []api.Translation) []string {
	if len(catalog) == 0 {
		return nil
	}
	if mapped, ok := languageDefaults[lang]; ok {
		for _, t := range catalog {
			if t.Module == mapped {
				return []string{mapped}
			}
		}
	}
	return []string{catalog[0].Module}
}
