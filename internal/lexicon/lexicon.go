// Package lexicon holds the canonical character-name mappings used to keep
// proper names consistent across languages. The completion model is told to
// leave character names in English; substitution to the localized spelling
// happens here, after parsing.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

// Lexicon maps lowercase language names to canonical-English-name →
// localized-name tables. It is loaded once per run and is read-only
// afterwards; Replace never mutates it.
type Lexicon struct {
	byLanguage map[string]map[string]string
	aliases    map[string][]string
}

// DefaultAliases lists known alternate spellings of canonical names that
// occur in source text and model output. Substitution treats an alias
// exactly like its canonical form.
var DefaultAliases = map[string][]string{
	"Lily": {"Lilly"},
}

// New returns an empty lexicon with the default alias table. Replace on an
// empty lexicon is a no-op.
func New() *Lexicon {
	return &Lexicon{
		byLanguage: make(map[string]map[string]string),
		aliases:    DefaultAliases,
	}
}

// Load reads a character file: a JSON array of objects carrying the English
// name under "Character Name (EN)" or "EN", and localized names under
// language-code keys ("TR", "FR", ...). Unknown keys are ignored. A missing
// file is not an error; it yields an empty lexicon so the run proceeds
// without substitution.
func Load(path string) (*Lexicon, error) {
	lex := New()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Character file not found: %s, continuing without substitutions\n", path)
		return lex, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read character file: %w", err)
	}

	var chars []map[string]string
	if err := json.Unmarshal(data, &chars); err != nil {
		return nil, fmt.Errorf("failed to parse character file: %w", err)
	}

	for _, char := range chars {
		enName := char["Character Name (EN)"]
		if enName == "" {
			enName = char["EN"]
		}
		if enName == "" {
			continue
		}

		for key, localized := range char {
			if localized == "" {
				continue
			}
			name, ok := langmeta.NameFor(key)
			if !ok {
				continue
			}
			if lex.byLanguage[name] == nil {
				lex.byLanguage[name] = make(map[string]string)
			}
			lex.byLanguage[name][enName] = localized
		}
	}

	return lex, nil
}

// SetAliases replaces the alias table. Keys are canonical English names,
// values are alternate spellings to substitute the same way.
func (l *Lexicon) SetAliases(aliases map[string][]string) {
	if aliases != nil {
		l.aliases = aliases
	}
}

// Languages returns the lowercase names of languages with at least one entry.
func (l *Lexicon) Languages() []string {
	names := make([]string, 0, len(l.byLanguage))
	for name := range l.byLanguage {
		names = append(names, name)
	}
	return names
}

// Entries returns the name table for a language, or nil. The language key
// is matched case-insensitively.
func (l *Lexicon) Entries(language string) map[string]string {
	return l.byLanguage[strings.ToLower(language)]
}

// Replace rewrites text for the given language, substituting every
// case-insensitive whole-word occurrence of each canonical English name
// (and its aliases) with the localized name. Text outside matched word
// boundaries is never touched. No-op when the language has no entries.
func (l *Lexicon) Replace(text, language string) string {
	entries := l.Entries(language)
	if len(entries) == 0 {
		return text
	}

	result := text
	for enName, localized := range entries {
		result = replaceWholeWord(result, enName, localized)
		for _, alias := range l.aliases[enName] {
			result = replaceWholeWord(result, alias, localized)
		}
	}
	return result
}

func replaceWholeWord(text, word, replacement string) string {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return text
	}
	return re.ReplaceAllLiteralString(text, replacement)
}
