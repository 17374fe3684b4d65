// Package localizer resolves all requested languages for one source text
// with a single completion call: prompt construction, the call itself,
// positional extraction, and character-name substitution.
package localizer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/unicostudio/b-ai-localization/internal/completion"
	"github.com/unicostudio/b-ai-localization/internal/langmeta"
	"github.com/unicostudio/b-ai-localization/internal/lexicon"
	"github.com/unicostudio/b-ai-localization/internal/parse"
	"github.com/unicostudio/b-ai-localization/internal/prompt"
)

// Result maps "english" plus one lowercase language code per requested
// language to translated text. Every requested language is present; failed
// extractions hold sentinel strings, never missing keys.
type Result map[string]string

// Localizer translates one source text at a time. It is stateless between
// calls apart from the shared read-only lexicon.
type Localizer struct {
	client    completion.Client
	model     string
	lex       *lexicon.Lexicon
	builder   prompt.Builder
	extractor parse.Extractor
	debug     bool
}

// Config assembles a Localizer.
type Config struct {
	Client       completion.Client
	ModelAlias   string
	Lexicon      *lexicon.Lexicon
	CustomPrompt string
	Debug        bool
}

func New(cfg Config) *Localizer {
	lex := cfg.Lexicon
	if lex == nil {
		lex = lexicon.New()
	}
	return &Localizer{
		client:    cfg.Client,
		model:     completion.ResolveModel(cfg.ModelAlias),
		lex:       lex,
		builder:   prompt.Builder{Custom: cfg.CustomPrompt},
		extractor: parse.Positional{},
		debug:     cfg.Debug,
	}
}

// Translate resolves every language in codes for englishText. The returned
// Result always contains "english" and exactly one entry per requested
// code. In debug mode the result is deterministic and no network call is
// made.
func (l *Localizer) Translate(ctx context.Context, description, englishText string, codes []string) Result {
	result := Result{"english": englishText}

	if l.debug {
		for _, code := range codes {
			name, ok := langmeta.NameFor(code)
			if !ok {
				continue
			}
			mock := fmt.Sprintf("[%s] %s", strings.ToUpper(code), englishText)
			result[strings.ToLower(code)] = l.lex.Replace(mock, name)
		}
		return result
	}

	names := langmeta.Names(codes)
	msgs := l.builder.Build(description, englishText, names)

	reply, err := l.client.Complete(ctx, completion.Request{
		Model:       l.model,
		System:      msgs.System,
		User:        msgs.User,
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Localization call failed: %v\n", err)
		for _, code := range codes {
			result[strings.ToLower(code)] = fmt.Sprintf("Error: %v", err)
		}
		return result
	}

	extracted := l.extractor.Extract(reply, names)

	for _, code := range codes {
		key := strings.ToLower(code)
		name, ok := langmeta.NameFor(code)
		if !ok {
			result[key] = fmt.Sprintf("[No translation available for %s]", key)
			continue
		}
		text := extracted[name]
		if !parse.IsFailure(text) {
			text = l.lex.Replace(text, name)
		}
		result[key] = text
	}

	return result
}
