// Package parse extracts per-language spans from the free-form text a
// completion model returns. Extraction is positional: the span for the
// language at position i runs from its label to the first label of any later
// language, so the language list must be the exact ordered list the prompt
// was built with.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

// Extractor pulls one text span per requested language out of a model reply.
// The positional implementation below matches the shipped behavior; the
// interface exists so structured (delimited or tagged) model output could be
// swapped in without touching callers.
type Extractor interface {
	Extract(reply string, languageNames []string) map[string]string
}

// Positional implements Extractor with label-boundary inference.
type Positional struct{}

// Sentinel returns the literal stored when a language's span cannot be
// found. It is data, not an error: one failed language never invalidates
// the others.
func Sentinel(languageName string) string {
	return fmt.Sprintf("Error: Could not extract %s localization", languageName)
}

// IsFailure reports whether a translation value is one of the failure
// markers that export must filter to an empty string.
func IsFailure(text string) bool {
	return strings.HasPrefix(text, "Error:") || strings.HasPrefix(text, "[No translation")
}

// Extract returns a map keyed by lowercase language name, one entry per
// requested language, never omitting a key. Labels are matched in
// title-case or ALL-CAPS form only; a reply using lowercase labels will not
// extract (kept as-is from the original matching rule).
func (Positional) Extract(reply string, languageNames []string) map[string]string {
	out := make(map[string]string, len(languageNames))

	for i, name := range languageNames {
		key := strings.ToLower(name)

		start, ok := labelEnd(reply, name)
		if !ok {
			out[key] = Sentinel(key)
			continue
		}

		end := len(reply)
		for _, later := range languageNames[i+1:] {
			if pos, ok := labelStart(reply[start:], later); ok && start+pos < end {
				end = start + pos
			}
		}

		out[key] = Clean(reply[start:end])
	}

	return out
}

// labelEnd finds the language's label and returns the index just past it.
func labelEnd(reply, name string) (int, bool) {
	re := labelPattern(name)
	loc := re.FindStringIndex(reply)
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}

// labelStart finds where the language's bare label begins.
func labelStart(reply, name string) (int, bool) {
	re := regexp.MustCompile(labelAlternation(name))
	loc := re.FindStringIndex(reply)
	if loc == nil {
		return 0, false
	}
	return loc[0], true
}

func labelPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(labelAlternation(name) + `[:\s]+`)
}

func labelAlternation(name string) string {
	return fmt.Sprintf(`(?:%s|%s)`,
		regexp.QuoteMeta(langmeta.Title(name)),
		regexp.QuoteMeta(strings.ToUpper(name)))
}

// Clean strips the formatting artifacts models wrap around a translation:
// a "Localization:**" or "**Text:**" prefix, and any trailing explanation
// section.
func Clean(text string) string {
	text = strings.TrimSpace(text)

	text = localizationPrefixRe.ReplaceAllString(text, "")
	text = textPrefixRe.ReplaceAllString(text, "")

	if loc := explanationRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	return strings.TrimSpace(text)
}

var (
	localizationPrefixRe = regexp.MustCompile(`Localization:\*\*\n\n`)
	textPrefixRe         = regexp.MustCompile(`^\*\*Text:\*\*\s*`)
	explanationRe        = regexp.MustCompile(`(?:\n\n)?\*\*(?:Explanation|Localization Notes):`)
)
