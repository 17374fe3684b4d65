// Package export flattens pipeline records into the per-language key→string
// maps delivered to the game, and packages them into the final archive. Key
// derivation and sentinel filtering live here; records themselves are never
// modified.
package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
	"github.com/unicostudio/b-ai-localization/internal/parse"
	"github.com/unicostudio/b-ai-localization/internal/pipeline"
)

// NormalizeKey maps an internal localization ID to its external key. The
// second return is false for keys that must never be exported
// (description / custom_description).
//
//	LEVEL_TEXT_<n>[_rest] → question_<n>[_rest]
//	HINT_<n>[_rest]       → hint_<n>[_rest]
//	END_<n>[_rest]        → endText_<n>[_rest]
//	anything else         → custom_<key>
func NormalizeKey(locID string) (string, bool) {
	switch {
	case strings.HasPrefix(locID, "LEVEL_TEXT_"):
		return "question_" + strings.TrimPrefix(locID, "LEVEL_TEXT_"), true
	case strings.HasPrefix(locID, "HINT_"):
		return "hint_" + strings.TrimPrefix(locID, "HINT_"), true
	case strings.HasPrefix(locID, "END_"):
		return "endText_" + strings.TrimPrefix(locID, "END_"), true
	case locID == "custom_description" || strings.EqualFold(locID, "description"):
		return "", false
	default:
		return "custom_" + locID, true
	}
}

// Lookup resolves the translation for one language from an entry map. The
// probe order tolerates entries keyed by language name, by export code, the
// "english" key for EN, and finally any key containing the name or code as
// a substring. The exact-key probes run before the substring scan so map
// iteration order can never pick a different key. Sentinel failure values
// resolve to "".
func Lookup(entry map[string]string, code string) string {
	name, _ := langmeta.NameFor(code)
	lowerCode := strings.ToLower(code)

	translation, ok := entry[name]
	if !ok {
		translation, ok = entry[lowerCode]
	}
	if !ok && strings.EqualFold(code, "EN") {
		translation, ok = entry["english"]
	}
	if !ok {
		for key, value := range entry {
			lowerKey := strings.ToLower(key)
			if name != "" && strings.Contains(lowerKey, name) {
				translation = value
				break
			}
			if strings.Contains(lowerKey, lowerCode) {
				translation = value
				break
			}
		}
	}

	if parse.IsFailure(translation) {
		return ""
	}
	return translation
}

// Bundle produces one flat normalized-key→translation map per requested
// language code.
func Bundle(records []pipeline.Record, codes []string) map[string]map[string]string {
	bundle := make(map[string]map[string]string, len(codes))

	for _, code := range codes {
		flat := make(map[string]string)
		for _, rec := range records {
			for _, locID := range rec.EntryOrder {
				key, ok := NormalizeKey(locID)
				if !ok {
					continue
				}
				flat[key] = Lookup(rec.Entries[locID], code)
			}
		}
		bundle[strings.ToLower(code)] = flat
	}

	return bundle
}

// WriteArchive writes one strings_<code>.json per language into a zip
// stream, in the order of codes.
func WriteArchive(w io.Writer, bundle map[string]map[string]string, codes []string) error {
	zw := zip.NewWriter(w)

	for _, code := range codes {
		flat, ok := bundle[strings.ToLower(code)]
		if !ok {
			continue
		}

		f, err := zw.Create(fmt.Sprintf("strings_%s.json", strings.ToLower(code)))
		if err != nil {
			return fmt.Errorf("failed to add archive entry for %s: %w", code, err)
		}

		enc := json.NewEncoder(f)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(flat); err != nil {
			return fmt.Errorf("failed to encode %s strings: %w", code, err)
		}
	}

	return zw.Close()
}

// record is the JSON shape of one asset in the full-results dump: metadata
// fields plus one object per localization entry, matching the historical
// output.json layout.
type record map[string]any

// WriteResults writes the complete nested results (all assets, all
// languages, descriptions included) as a single JSON document.
func WriteResults(w io.Writer, records []pipeline.Record) error {
	out := make([]record, 0, len(records))
	for _, rec := range records {
		item := record{
			"filename":    rec.Filename,
			"description": rec.Description,
			"OCR_EN":      rec.OCRText,
		}
		for _, locID := range rec.EntryOrder {
			item[locID] = rec.Entries[locID]
		}
		out = append(out, item)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
