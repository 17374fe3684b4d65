// Package validator performs a diagnostic check that an extracted
// translation appears to be written in its target language. It only
// produces warnings; translation quality is out of scope and results are
// never altered based on the check.
package validator

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

// Texts shorter than this produce unreliable detections and pass without
// being checked.
const minCheckLength = 20

// Validator wraps a language detector. The detector is expensive to build;
// construct one Validator per run and reuse it.
type Validator struct {
	det lingua.LanguageDetector
}

func New() *Validator {
	det := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &Validator{det: det}
}

// Check returns an error when text is detected as a language other than the
// one the export code identifies. Short or undetectable texts pass
// silently.
func (v *Validator) Check(text, code string) error {
	expected := langmeta.BCP47(code)
	// Regional variants (zh-TW) are compared on the base language.
	if i := strings.IndexByte(expected, '-'); i > 0 {
		expected = expected[:i]
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minCheckLength {
		return nil
	}

	detected, ok := v.det.DetectLanguageOf(trimmed)
	if !ok {
		return nil
	}

	iso := strings.ToLower(detected.IsoCode639_1().String())
	if !strings.EqualFold(iso, expected) {
		return fmt.Errorf("expected %s but text looks like %s", expected, iso)
	}
	return nil
}
