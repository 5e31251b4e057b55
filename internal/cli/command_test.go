package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "ankiforge [word]" {
		t.Errorf("Expected Use to be 'ankiforge [word]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "flashcard") {
		t.Errorf("Expected Short description to mention flashcards")
	}

	flagTests := []string{
		"config",
		"data-dir",
		"context",
		"mode",
		"type",
		"batch",
		"skip-audio",
		"skip-images",
		"backfill",
		"backfill-budget",
		"anki",
		"anki-csv",
		"deck-name",
		"list-models",
		"sweep-media",
		"sweep-dry-run",
		"gemini-model",
		"audio-provider",
		"format",
		"google-word-voice",
		"google-sentence-voice",
		"openai-model",
		"openai-voice",
		"openai-speed",
		"openai-instruction",
		"image-api",
		"openai-image-model",
		"openai-image-size",
		"openai-image-quality",
		"openai-image-style",
	}

	for _, name := range flagTests {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlagDefaults(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	dataDirFlag := cmd.Flags().Lookup("data-dir")
	if dataDirFlag == nil {
		t.Fatal("data-dir flag not found")
	}
	home, _ := os.UserHomeDir()
	expectedDefault := filepath.Join(home, ".local", "state", "ankiforge")
	if dataDirFlag.DefValue != expectedDefault {
		t.Errorf("Expected default data dir to be %s, got %s", expectedDefault, dataDirFlag.DefValue)
	}

	formatFlag := cmd.Flags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("format flag not found")
	}
	if formatFlag.DefValue != "mp3" {
		t.Errorf("Expected default format to be mp3, got %s", formatFlag.DefValue)
	}

	budgetFlag := cmd.Flags().Lookup("backfill-budget")
	if budgetFlag == nil {
		t.Fatal("backfill-budget flag not found")
	}
	if budgetFlag.DefValue != "270" {
		t.Errorf("Expected default backfill budget to be 270, got %s", budgetFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test-config.yaml")
	content := `gemini:
  api_key: test-gemini-key
audio:
  provider: openai`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	InitConfig(cfgPath)

	if viper.GetString("audio.provider") != "openai" {
		t.Errorf("config file value not loaded: %s", viper.GetString("audio.provider"))
	}

	os.Setenv("ANKIFORGE_TEST_VAR", "test-value")
	defer os.Unsetenv("ANKIFORGE_TEST_VAR")
	if viper.GetString("test_var") != "test-value" {
		t.Error("Environment variable not properly loaded")
	}
}

func TestKeyLookups(t *testing.T) {
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		envVar    string
		configKey string
		lookup    func() string
	}{
		{"openai", "OPENAI_API_KEY", "audio.openai_key", GetOpenAIKey},
		{"gemini", "GEMINI_API_KEY", "gemini.api_key", GetGeminiKey},
		{"google-tts", "GOOGLE_TTS_API_KEY", "audio.google_key", GetGoogleTTSKey},
		{"search", "GOOGLE_SEARCH_API_KEY", "image.search_key", GetSearchKey},
		{"search-cx", "GOOGLE_SEARCH_CX", "image.search_cx", GetSearchEngineID},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_env_wins", func(t *testing.T) {
			viper.Reset()
			viper.Set(tt.configKey, "config-value")
			os.Setenv(tt.envVar, "env-value")
			defer os.Unsetenv(tt.envVar)

			if got := tt.lookup(); got != "env-value" {
				t.Errorf("%s lookup = %q, want env-value", tt.name, got)
			}
		})

		t.Run(tt.name+"_config_fallback", func(t *testing.T) {
			viper.Reset()
			viper.Set(tt.configKey, "config-value")
			os.Unsetenv(tt.envVar)

			if got := tt.lookup(); got != "config-value" {
				t.Errorf("%s lookup = %q, want config-value", tt.name, got)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	cmd.Flags().Set("format", "wav")
	cmd.Flags().Set("gemini-model", "gemini-2.5-flash")
	cmd.Flags().Set("deck-name", "My Deck")

	bindFlagsToViper(cmd)

	if viper.GetString("audio.format") != "wav" {
		t.Errorf("Expected audio.format to be wav, got %s", viper.GetString("audio.format"))
	}
	if viper.GetString("gemini.model") != "gemini-2.5-flash" {
		t.Errorf("Expected gemini.model to be gemini-2.5-flash, got %s", viper.GetString("gemini.model"))
	}
	if viper.GetString("anki.deck_name") != "My Deck" {
		t.Errorf("Expected anki.deck_name to be My Deck, got %s", viper.GetString("anki.deck_name"))
	}
}
