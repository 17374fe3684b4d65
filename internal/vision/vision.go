// Package vision resolves a short descriptive context for each asset by
// sending its screenshot to a vision-capable completion endpoint. Failures
// here never stop a run: every path degrades to a usable description with a
// provenance tag so downstream stages can tell how it was obtained.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Provenance records how a description was obtained.
type Provenance string

const (
	ProvenanceAPI      Provenance = "api"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceSkipped  Provenance = "skipped"
)

// Sentinel descriptions for the non-API paths.
const (
	DescSkipped  = "ENTERED IMAGE FOLDER NOT SHOWN"
	DescNotFound = "IMAGE NOT FOUND"
)

// Description is the per-asset context handed to the prompt builder.
type Description struct {
	AssetID    string
	Filename   string
	Text       string
	Provenance Provenance
}

// Config carries the tunables of the provider. Zero values are replaced by
// the historical defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int           // additional attempts after the first; negative selects the default, 0 disables retries
	RetryDelay time.Duration // fixed delay between attempts
	Debug      bool          // return a canned description, no network I/O
}

// Provider fetches image descriptions from the vision API.
type Provider struct {
	cfg    Config
	client *http.Client
}

const maxSentences = 5

// New creates a Provider. Defaults: OpenRouter base URL, the
// openai/chatgpt-4o-latest vision model, 20 s request timeout, 2 retries
// (when MaxRetries is negative) with a 2 s delay. MaxRetries of 0 disables
// retries.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "openai/chatgpt-4o-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Describe resolves the context description for one asset. imagesDir == ""
// skips image processing entirely. Describe never returns an error; API and
// lookup failures degrade to fallback descriptions.
func (p *Provider) Describe(ctx context.Context, imagesDir, assetID string) Description {
	if imagesDir == "" {
		return Description{
			AssetID:    assetID,
			Filename:   assetID + ".unknown",
			Text:       DescSkipped,
			Provenance: ProvenanceSkipped,
		}
	}

	imagePath, ok := FindImage(imagesDir, assetID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Could not find image for ID: %s\n", assetID)
		return Description{
			AssetID:    assetID,
			Filename:   assetID + ".unknown",
			Text:       DescNotFound,
			Provenance: ProvenanceFallback,
		}
	}

	filename := filepath.Base(imagePath)

	if p.cfg.Debug {
		return Description{
			AssetID:  assetID,
			Filename: filename,
			Text: fmt.Sprintf("This is a debug description for image %s. "+
				"The image shows a game screen. There's a character and some objects. "+
				"The player needs to solve a puzzle.", filename),
			Provenance: ProvenanceAPI,
		}
	}

	text, err := p.describeImage(ctx, imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Image description failed for %s: %v, using fallback\n", filename, err)
		return Description{
			AssetID:    assetID,
			Filename:   filename,
			Text:       fallbackDescription(filename),
			Provenance: ProvenanceFallback,
		}
	}

	return Description{
		AssetID:    assetID,
		Filename:   filename,
		Text:       TruncateSentences(text, maxSentences),
		Provenance: ProvenanceAPI,
	}
}

// FindImage locates the asset's screenshot by matching "ID<n>." in the
// filename, case-insensitively. A leading "ID" on the asset identifier is
// stripped before matching.
func FindImage(imagesDir, assetID string) (string, bool) {
	idNum := strings.TrimPrefix(assetID, "ID")
	re, err := regexp.Compile(`(?i).*ID` + regexp.QuoteMeta(idNum) + `\..*$`)
	if err != nil {
		return "", false
	}

	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if re.MatchString(entry.Name()) {
			return filepath.Join(imagesDir, entry.Name()), true
		}
	}
	return "", false
}

const visionSystemPrompt = "You are a detailed image description expert for a mobile game. " +
	"Examine the game screenshot and create a concise description that includes the main elements, " +
	"puzzle/challenge, visible text, and overall theme. Keep your description to a maximum of 5 sentences."

type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type visionMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type visionContentPart struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	ImageURL *visionImagePart `json:"image_url,omitempty"`
}

type visionImagePart struct {
	URL string `json:"url"`
}

// describeImage performs the API call with bounded retry. Only timeouts and
// connection failures are retried; any other failure is returned immediately
// and the caller degrades it.
func (p *Provider) describeImage(ctx context.Context, imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	if p.cfg.APIKey == "" {
		return "", fmt.Errorf("no API key available for image description")
	}

	body := visionRequest{
		Model: p.cfg.Model,
		Messages: []visionMessage{
			{Role: "system", Content: visionSystemPrompt},
			{Role: "user", Content: []visionContentPart{
				{Type: "text", Text: "What does this game screenshot show?"},
				{Type: "image_url", ImageURL: &visionImagePart{
					URL: "data:image/jpeg;base64," + encoded,
				}},
			}},
		},
		MaxTokens: 300,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vision request: %w", err)
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST",
			fmt.Sprintf("%s/chat/completions", p.cfg.BaseURL), bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create vision request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		req.Header.Set("HTTP-Referer", "https://cascade.ai")
		req.Header.Set("X-Title", "Game Localization Tool")

		resp, err = p.client.Do(req)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt >= p.cfg.MaxRetries {
			return "", fmt.Errorf("vision request failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Vision request failed (%v), retry %d/%d\n", err, attempt+1, p.cfg.MaxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.cfg.RetryDelay):
		}
	}
	defer resp.Body.Close()

	var reply visionReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	return reply.content()
}

// isRetryable reports whether err is a timeout or connection-level failure.
// Other failures (bad request, TLS, protocol errors) are not retried.
func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// visionReply models the response shapes the API is known to produce:
// the standard choices[].message.content form, the older choices[].text
// form, an error envelope, and a handful of miscellaneous top-level keys.
// content() probes them in that priority order.
type visionReply struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Response      string `json:"response"`
	Output        string `json:"output"`
	GeneratedText string `json:"generated_text"`
	Completion    string `json:"completion"`
}

func (r *visionReply) content() (string, error) {
	if len(r.Choices) > 0 {
		choice := r.Choices[0]
		if choice.Message != nil && choice.Message.Content != "" {
			return choice.Message.Content, nil
		}
		if choice.Text != "" {
			return choice.Text, nil
		}
		return "", fmt.Errorf("could not extract content from vision API response")
	}
	if r.Error != nil {
		return "", fmt.Errorf("vision API returned error: %s", r.Error.Message)
	}
	for _, alt := range []string{r.Response, r.Output, r.GeneratedText, r.Completion} {
		if alt != "" {
			return alt, nil
		}
	}
	return "", fmt.Errorf("invalid response format from vision API")
}

// fallbackDescription synthesizes a generic, filename-referencing context so
// processing continues when the API cannot provide one.
func fallbackDescription(filename string) string {
	return fmt.Sprintf("This is likely a game screen showing interactive elements. "+
		"The player appears to be presented with a puzzle or challenge to solve. "+
		"There may be instructions or game elements visible on screen. File: %s", filename)
}

// TruncateSentences keeps at most n sentences, splitting after terminal
// punctuation (. ! ?) followed by whitespace.
func TruncateSentences(text string, n int) string {
	if n <= 0 {
		return text
	}

	count := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			// A sentence ends at terminal punctuation followed by
			// whitespace or end of text.
			if i+1 >= len(runes) {
				count++
			} else if runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				count++
				if count >= n {
					return strings.TrimSpace(string(runes[:i+1]))
				}
			}
		}
	}
	return text
}
