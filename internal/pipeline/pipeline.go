// Package pipeline drives a localization run: assets strictly in input
// order, entries strictly in row order, one context lookup per asset and one
// completion call per entry. Failures stay contained to the entry or asset
// that produced them; only ingestion can abort a run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicostudio/b-ai-localization/internal/ingest"
	"github.com/unicostudio/b-ai-localization/internal/localizer"
	"github.com/unicostudio/b-ai-localization/internal/parse"
	"github.com/unicostudio/b-ai-localization/internal/vision"
)

// OCR placeholder values. OCR itself is not performed; the field documents
// why for each asset.
const (
	ocrNoDirectory = "[OCR text not available - no image directory specified]"
	ocrNotFound    = "[OCR text not available - image not found]"
	ocrDisabled    = "[OCR functionality disabled]"
)

// Record is the per-asset output: the resolved context plus one translation
// entry per source row. Entries preserve row order via EntryOrder.
type Record struct {
	AssetID     string
	Filename    string
	Description string
	Provenance  vision.Provenance
	OCRText     string
	EntryOrder  []string
	Entries     map[string]map[string]string
}

// FallbackTranslator fills a failed language with a machine translation.
// Implementations receive the export code of the target language.
type FallbackTranslator interface {
	TranslateText(ctx context.Context, text, code string) (string, error)
}

// LanguageChecker flags extracted spans that do not look like the target
// language. Purely diagnostic; results are never modified.
type LanguageChecker interface {
	Check(text, code string) error
}

// Config carries the per-run settings.
type Config struct {
	Languages []string // export codes, ordered
	ImagesDir string   // "" skips image context entirely
	Debug     bool
	Throttle  time.Duration // delay between completion calls; skipped in debug
}

// Pipeline wires the context provider and the localizer together.
type Pipeline struct {
	vision    *vision.Provider
	localizer *localizer.Localizer
	cfg       Config
	runID     string

	// Optional collaborators.
	Fallback FallbackTranslator
	Checker  LanguageChecker
}

const defaultThrottle = 500 * time.Millisecond

func New(provider *vision.Provider, loc *localizer.Localizer, cfg Config) *Pipeline {
	if cfg.Throttle <= 0 {
		cfg.Throttle = defaultThrottle
	}
	return &Pipeline{
		vision:    provider,
		localizer: loc,
		cfg:       cfg,
		runID:     uuid.New().String(),
	}
}

// RunID identifies this run in logs and export artifacts.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run processes all rows and returns one Record per asset, in input
// discovery order. Run never drops an asset: context and translation
// failures degrade to sentinel values inside the records.
func (p *Pipeline) Run(ctx context.Context, rows []ingest.Row) []Record {
	groups := ingest.GroupByAsset(rows)
	records := make([]Record, 0, len(groups))

	for _, group := range groups {
		fmt.Fprintf(os.Stderr, "Processing asset: %s (%d entries)\n", group.AssetID, len(group.Rows))

		desc := p.vision.Describe(ctx, p.cfg.ImagesDir, group.AssetID)

		rec := Record{
			AssetID:     group.AssetID,
			Filename:    desc.Filename,
			Description: desc.Text,
			Provenance:  desc.Provenance,
			OCRText:     ocrPlaceholder(desc),
			Entries:     make(map[string]map[string]string, len(group.Rows)),
		}

		for i, row := range group.Rows {
			loc := p.localizer.Translate(ctx, desc.Text, row.English, p.cfg.Languages)

			entry := make(map[string]string, len(loc))
			entry["EN"] = row.English
			for key, text := range loc {
				if key == "english" {
					continue
				}
				entry[key] = text
			}

			p.applyFallback(ctx, entry)
			p.checkLanguages(group.AssetID, row.LocID, entry)

			rec.EntryOrder = append(rec.EntryOrder, row.LocID)
			rec.Entries[row.LocID] = entry

			// Simple rate throttle between completion calls.
			if !p.cfg.Debug && i < len(group.Rows)-1 {
				select {
				case <-ctx.Done():
				case <-time.After(p.cfg.Throttle):
				}
			}
		}

		records = append(records, rec)
	}

	return records
}

// applyFallback replaces sentinel failure values with machine translations
// of the English source when a fallback translator is configured. The
// sentinel stays in place if the fallback also fails.
func (p *Pipeline) applyFallback(ctx context.Context, entry map[string]string) {
	if p.Fallback == nil {
		return
	}
	for code, text := range entry {
		if code == "EN" || !parse.IsFailure(text) {
			continue
		}
		translated, err := p.Fallback.TranslateText(ctx, entry["EN"], code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "MT fallback failed for %s: %v\n", code, err)
			continue
		}
		entry[code] = translated
	}
}

// checkLanguages warns about spans that do not appear to be in their target
// language. Diagnostic only.
func (p *Pipeline) checkLanguages(assetID, locID string, entry map[string]string) {
	if p.Checker == nil {
		return
	}
	for code, text := range entry {
		if code == "EN" || parse.IsFailure(text) {
			continue
		}
		if err := p.Checker.Check(text, strings.ToLower(code)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s/%s [%s]: %v\n", assetID, locID, code, err)
		}
	}
}

func ocrPlaceholder(desc vision.Description) string {
	switch {
	case desc.Provenance == vision.ProvenanceSkipped:
		return ocrNoDirectory
	case desc.Text == vision.DescNotFound:
		return ocrNotFound
	default:
		return ocrDisabled
	}
}
