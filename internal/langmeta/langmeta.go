// Package langmeta provides the registry of languages the localization
// pipeline can target. Every language is addressable by a short export code
// (the suffix of the per-language output file) and a canonical lowercase
// name (the label the completion model is asked to emit). Lookups in both
// directions are case-insensitive.
package langmeta

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// codeByName maps canonical lowercase language names to export codes.
// The codes are the historical export-file suffixes, not ISO codes
// (note jp, kr, vn, cz, my, cn_tr).
var codeByName = map[string]string{
	"turkish":    "tr",
	"french":     "fr",
	"german":     "de",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"japanese":   "jp",
	"korean":     "kr",
	"thai":       "th",
	"vietnamese": "vn",
	"indonesian": "id",
	"malay":      "my",
	"romanian":   "ro",
	"arabic":     "ar",
	"polish":     "pl",
	"czech":      "cz",
	"hungarian":  "hu",
	"chinese":    "cn_tr",
}

var nameByCode = func() map[string]string {
	m := make(map[string]string, len(codeByName))
	for name, code := range codeByName {
		m[code] = name
	}
	return m
}()

// bcp47ByCode maps export codes whose spelling differs from the BCP 47
// tag to a tag the Cloud Translation API accepts.
var bcp47ByCode = map[string]string{
	"jp":    "ja",
	"kr":    "ko",
	"vn":    "vi",
	"cz":    "cs",
	"my":    "ms",
	"cn_tr": "zh-TW",
}

var titleCaser = cases.Title(language.English)

// CodeFor returns the export code for a language name.
func CodeFor(name string) (string, bool) {
	code, ok := codeByName[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// NameFor returns the canonical lowercase name for an export code.
func NameFor(code string) (string, bool) {
	name, ok := nameByCode[strings.ToLower(strings.TrimSpace(code))]
	return name, ok
}

// Title renders a language name the way prompt labels are written
// ("turkish" → "Turkish").
func Title(name string) string {
	return titleCaser.String(strings.ToLower(name))
}

// BCP47 returns a BCP 47 language tag for an export code, for use with
// machine-translation APIs. Codes without a special mapping are returned
// lowercased as-is.
func BCP47(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if tag, ok := bcp47ByCode[c]; ok {
		return tag
	}
	return c
}

// Names resolves a list of export codes to canonical lowercase names,
// skipping codes that are not in the registry.
func Names(codes []string) []string {
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		if name, ok := NameFor(code); ok {
			names = append(names, name)
		}
	}
	return names
}

// All returns every registered (code, name) pair sorted by code.
func All() [][2]string {
	pairs := make([][2]string, 0, len(nameByCode))
	for code, name := range nameByCode {
		pairs = append(pairs, [2]string{code, name})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}
