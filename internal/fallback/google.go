// Package fallback provides an optional machine-translation fill-in for
// languages the completion reply could not be parsed for. It is off by
// default; when enabled, a sentinel value is replaced by a Google Cloud
// translation of the English source instead of being exported empty.
package fallback

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/unicostudio/b-ai-localization/internal/langmeta"
)

// GoogleTranslator translates single strings with the Cloud Translation API.
type GoogleTranslator struct {
	credentials string
}

// NewGoogleTranslator creates a translator. credentials may be empty to use
// ambient application-default credentials.
func NewGoogleTranslator(credentials string) *GoogleTranslator {
	return &GoogleTranslator{credentials: credentials}
}

// TranslateText translates text from English into the language identified
// by the export code.
func (g *GoogleTranslator) TranslateText(ctx context.Context, text, code string) (string, error) {
	target, err := language.Parse(langmeta.BCP47(code))
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", code, err)
	}

	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create translate client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, target, &translate.Options{
		Source: language.English,
	})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return translations[0].Text, nil
}
