package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/ankiforge/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ankiforge [word]",
		Short: "AI vocabulary flashcard pipeline",
		Long: `ankiforge turns submitted words into complete Anki flashcards.

For each word it generates a definition, a cloze example sentence and
pronunciation audio, selects a validated illustration from web search,
and appends the entry to a local vocabulary table. Incomplete entries
are repaired by the backfill pass, and pending entries export as an
Anki deck.

Examples:
  ankiforge serendipity                       # Process a single word
  ankiforge bank --context "river bank"       # Disambiguate with context
  ankiforge --batch words.txt                 # Process a submission file
  ankiforge --backfill                        # Repair incomplete entries
  ankiforge --anki                            # Export pending entries as .apkg`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(home, ".local", "state", "ankiforge")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.ankiforge.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.DataDir, "data-dir", "d", defaultDataDir, "Data directory for the vocabulary table and media")
	cmd.Flags().StringVarP(&flags.Context, "context", "c", "", "Context the word was encountered in")
	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", flags.Mode, "Study mode: general_vocab or pronunciation")
	cmd.Flags().StringVar(&flags.PartOfSpeech, "type", "", "Part of speech override (noun, verb, ...)")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Process submissions from file (word | context | mode per line)")
	cmd.Flags().BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio generation")
	cmd.Flags().BoolVar(&flags.SkipImages, "skip-images", false, "Skip image selection")
	cmd.Flags().BoolVar(&flags.Backfill, "backfill", false, "Repair incomplete entries (time-boxed)")
	cmd.Flags().IntVar(&flags.BackfillBudget, "backfill-budget", flags.BackfillBudget, "Backfill time budget in seconds")
	cmd.Flags().BoolVar(&flags.GenerateAnki, "anki", false, "Export pending entries (APKG format by default, use --anki-csv for CSV)")
	cmd.Flags().BoolVar(&flags.AnkiCSV, "anki-csv", false, "Export CSV format instead of APKG when using --anki")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for APKG export")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	cmd.Flags().BoolVar(&flags.SweepMedia, "sweep-media", false, "Remove media files no entry references")
	cmd.Flags().BoolVar(&flags.SweepDryRun, "sweep-dry-run", false, "With --sweep-media, only report orphans")

	// Gemini flags
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for enrichment, judging and validation")

	// Audio flags
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "TTS provider: google or openai")
	cmd.Flags().StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (mp3 or wav)")
	cmd.Flags().StringVar(&flags.GoogleWordVoice, "google-word-voice", flags.GoogleWordVoice, "Google TTS voice for isolated words")
	cmd.Flags().StringVar(&flags.GoogleSentenceVoice, "google-sentence-voice", flags.GoogleSentenceVoice, "Google TTS voice for example sentences")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, nova, shimmer, ...")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model")

	// Image flags
	cmd.Flags().StringVar(&flags.ImageAPI, "image-api", flags.ImageAPI, "Image source: customsearch or dalle")
	cmd.Flags().StringVar(&flags.OpenAIImageModel, "openai-image-model", flags.OpenAIImageModel, "OpenAI image model: dall-e-2 or dall-e-3")
	cmd.Flags().StringVar(&flags.OpenAIImageSize, "openai-image-size", flags.OpenAIImageSize, "Image size: 256x256, 512x512, 1024x1024")
	cmd.Flags().StringVar(&flags.OpenAIImageQuality, "openai-image-quality", flags.OpenAIImageQuality, "Image quality: standard or hd (dall-e-3 only)")
	cmd.Flags().StringVar(&flags.OpenAIImageStyle, "openai-image-style", flags.OpenAIImageStyle, "Image style: natural or vivid (dall-e-3 only)")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("data.directory", cmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("gemini.model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("audio.provider", cmd.Flags().Lookup("audio-provider"))
	viper.BindPFlag("audio.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("audio.google_word_voice", cmd.Flags().Lookup("google-word-voice"))
	viper.BindPFlag("audio.google_sentence_voice", cmd.Flags().Lookup("google-sentence-voice"))
	viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", cmd.Flags().Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", cmd.Flags().Lookup("openai-instruction"))
	viper.BindPFlag("image.provider", cmd.Flags().Lookup("image-api"))
	viper.BindPFlag("image.openai_model", cmd.Flags().Lookup("openai-image-model"))
	viper.BindPFlag("image.openai_size", cmd.Flags().Lookup("openai-image-size"))
	viper.BindPFlag("image.openai_quality", cmd.Flags().Lookup("openai-image-quality"))
	viper.BindPFlag("image.openai_style", cmd.Flags().Lookup("openai-image-style"))
	viper.BindPFlag("anki.deck_name", cmd.Flags().Lookup("deck-name"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".ankiforge" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ankiforge")
	}

	// Environment variables
	viper.SetEnvPrefix("ANKIFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("audio.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.api_key")
}

// GetGoogleTTSKey retrieves the Google Cloud TTS API key from
// environment or config
func GetGoogleTTSKey() string {
	if key := os.Getenv("GOOGLE_TTS_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("audio.google_key")
}

// GetSearchKey retrieves the Google Custom Search API key from
// environment or config
func GetSearchKey() string {
	if key := os.Getenv("GOOGLE_SEARCH_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("image.search_key")
}

// GetSearchEngineID retrieves the Custom Search engine ID from
// environment or config
func GetSearchEngineID() string {
	if id := os.Getenv("GOOGLE_SEARCH_CX"); id != "" {
		return id
	}
	return viper.GetString("image.search_cx")
}
