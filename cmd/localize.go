package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unicostudio/b-ai-localization/internal/completion"
	"github.com/unicostudio/b-ai-localization/internal/export"
	"github.com/unicostudio/b-ai-localization/internal/fallback"
	"github.com/unicostudio/b-ai-localization/internal/ingest"
	"github.com/unicostudio/b-ai-localization/internal/lexicon"
	"github.com/unicostudio/b-ai-localization/internal/localizer"
	"github.com/unicostudio/b-ai-localization/internal/pipeline"
	"github.com/unicostudio/b-ai-localization/internal/validator"
	"github.com/unicostudio/b-ai-localization/internal/vision"
)

var (
	locCSVFile    string
	locImagesDir  string
	locOutputDir  string
	locCharsFile  string
	locModel      string
	locLanguages  []string
	locAPIKey     string
	locPromptFile string
	locDebug      bool
	locSkipImages bool

	locVisionTimeout time.Duration
	locVisionRetries int
	locRetryDelay    time.Duration
	locThrottle      time.Duration

	locMTFallback  bool
	locCredentials string
	locValidate    bool
)

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "Localize a CSV of game strings into the selected languages",
	Long: `Localize game strings from a CSV file (columns IDS, EN, LOCID) into the
selected target languages.

Each asset's screenshot (matched by ID in --images-dir) is described once
through the vision model and the description is used as context for every
string of that asset. Character names are kept in English by the model and
substituted from --chars-file afterwards.

Outputs written to --output-dir:
  output_<timestamp>.json             full nested results
  localized_strings_<timestamp>.zip   one strings_<code>.json per language

Debug mode (--debug) produces deterministic mock translations without any
API calls.

Example:
  loctool localize -i strings.csv --images-dir ./screens -t TR -t FR -t DE`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := locAPIKey
		if apiKey == "" {
			apiKey = viper.GetString("api_key")
		}
		if apiKey == "" && !locDebug {
			return fmt.Errorf("no API key: set OPENROUTER_API_KEY or pass --api-key")
		}

		f, err := os.Open(locCSVFile)
		if err != nil {
			return fmt.Errorf("failed to open input CSV: %w", err)
		}
		rows, err := ingest.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", locCSVFile, err)
		}
		fmt.Fprintf(os.Stderr, "Read %d rows from %s\n", len(rows), locCSVFile)

		lex := lexicon.New()
		if locCharsFile != "" {
			lex, err = lexicon.Load(locCharsFile)
			if err != nil {
				return fmt.Errorf("failed to load character file: %w", err)
			}
		}

		customPrompt := ""
		if locPromptFile != "" {
			data, err := os.ReadFile(locPromptFile)
			if err != nil {
				return fmt.Errorf("failed to read prompt file: %w", err)
			}
			customPrompt = string(data)
		}

		imagesDir := locImagesDir
		if locSkipImages {
			imagesDir = ""
		}

		provider := vision.New(vision.Config{
			APIKey:     apiKey,
			Timeout:    locVisionTimeout,
			MaxRetries: locVisionRetries,
			RetryDelay: locRetryDelay,
			Debug:      locDebug,
		})

		loc := localizer.New(localizer.Config{
			Client:       completion.NewOpenRouterClient(apiKey, "", 0),
			ModelAlias:   locModel,
			Lexicon:      lex,
			CustomPrompt: customPrompt,
			Debug:        locDebug,
		})

		pipe := pipeline.New(provider, loc, pipeline.Config{
			Languages: locLanguages,
			ImagesDir: imagesDir,
			Debug:     locDebug,
			Throttle:  locThrottle,
		})
		if locMTFallback {
			pipe.Fallback = fallback.NewGoogleTranslator(locCredentials)
		}
		if locValidate {
			pipe.Checker = validator.New()
		}

		fmt.Fprintf(os.Stderr, "Run ID: %s\n", pipe.RunID())

		ctx := context.Background()
		records := pipe.Run(ctx, rows)
		if len(records) == 0 {
			return fmt.Errorf("no records were produced")
		}

		if err := os.MkdirAll(locOutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		timestamp := time.Now().Format("20060102-150405")

		jsonPath := filepath.Join(locOutputDir, fmt.Sprintf("output_%s.json", timestamp))
		jsonFile, err := os.Create(jsonPath)
		if err != nil {
			return fmt.Errorf("failed to create results file: %w", err)
		}
		if err := export.WriteResults(jsonFile, records); err != nil {
			jsonFile.Close()
			return fmt.Errorf("failed to write results: %w", err)
		}
		if err := jsonFile.Close(); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		zipPath := filepath.Join(locOutputDir, fmt.Sprintf("localized_strings_%s.zip", timestamp))
		zipFile, err := os.Create(zipPath)
		if err != nil {
			return fmt.Errorf("failed to create archive: %w", err)
		}
		bundle := export.Bundle(records, locLanguages)
		if err := export.WriteArchive(zipFile, bundle, locLanguages); err != nil {
			zipFile.Close()
			return fmt.Errorf("failed to write archive: %w", err)
		}
		if err := zipFile.Close(); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}

		entries := 0
		for _, rec := range records {
			entries += len(rec.EntryOrder)
		}
		fmt.Printf("Localized %d entries across %d assets into %d languages\n",
			entries, len(records), len(locLanguages))
		fmt.Printf("Results: %s\n", jsonPath)
		fmt.Printf("Archive: %s\n", zipPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localizeCmd)

	localizeCmd.Flags().StringVarP(&locCSVFile, "input", "i", "", "Input CSV file with IDS, EN, LOCID columns (required)")
	localizeCmd.Flags().StringVar(&locImagesDir, "images-dir", "", "Directory containing game screenshots")
	localizeCmd.Flags().StringVarP(&locOutputDir, "output-dir", "o", "./output", "Directory for output files")
	localizeCmd.Flags().StringVar(&locCharsFile, "chars-file", "", "JSON file with character name localizations")
	localizeCmd.Flags().StringVarP(&locModel, "model", "m", "grok3", "Translation model (grok3, gpt-4o, claude-3-7-sonnet, gemini-1.5-pro)")
	localizeCmd.Flags().StringSliceVarP(&locLanguages, "target", "t", []string{"TR", "FR", "DE"}, "Target language code (repeatable)")
	localizeCmd.Flags().StringVar(&locAPIKey, "api-key", "", "OpenRouter API key (default: OPENROUTER_API_KEY)")
	localizeCmd.Flags().StringVar(&locPromptFile, "prompt-file", "", "File with a custom system prompt (overrides the default verbatim)")
	localizeCmd.Flags().BoolVar(&locDebug, "debug", false, "Debug mode: deterministic mock output, no API calls")
	localizeCmd.Flags().BoolVar(&locSkipImages, "skip-images", false, "Skip image context entirely")

	localizeCmd.Flags().DurationVar(&locVisionTimeout, "vision-timeout", 20*time.Second, "Vision request timeout")
	localizeCmd.Flags().IntVar(&locVisionRetries, "vision-retries", 2, "Vision retries after the first attempt (0 disables)")
	localizeCmd.Flags().DurationVar(&locRetryDelay, "retry-delay", 2*time.Second, "Delay between vision retry attempts")
	localizeCmd.Flags().DurationVar(&locThrottle, "throttle", 500*time.Millisecond, "Delay between completion calls")

	localizeCmd.Flags().BoolVar(&locMTFallback, "mt-fallback", false, "Fill failed languages with Google Cloud machine translation")
	localizeCmd.Flags().StringVar(&locCredentials, "credentials", "", "Google Cloud credentials file for --mt-fallback")
	localizeCmd.Flags().BoolVar(&locValidate, "validate", false, "Warn when a translation does not look like its target language")

	localizeCmd.MarkFlagRequired("input")
}
