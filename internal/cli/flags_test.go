package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Mode", flags.Mode, "general_vocab"},
		{"BackfillBudget", flags.BackfillBudget, 270},
		{"DeckName", flags.DeckName, "Vocabulary"},
		{"GeminiModel", flags.GeminiModel, "gemini-2.5-pro"},
		{"AudioProvider", flags.AudioProvider, "google"},
		{"AudioFormat", flags.AudioFormat, "mp3"},
		{"GoogleWordVoice", flags.GoogleWordVoice, "en-US-Studio-O"},
		{"GoogleSentenceVoice", flags.GoogleSentenceVoice, "en-US-Chirp3-HD-Leda"},
		{"OpenAIModel", flags.OpenAIModel, "tts-1"},
		{"OpenAIVoice", flags.OpenAIVoice, "nova"},
		{"OpenAISpeed", flags.OpenAISpeed, 1.0},
		{"ImageAPI", flags.ImageAPI, "customsearch"},
		{"OpenAIImageModel", flags.OpenAIImageModel, "dall-e-3"},
		{"OpenAIImageSize", flags.OpenAIImageSize, "1024x1024"},
		{"OpenAIImageQuality", flags.OpenAIImageQuality, "standard"},
		{"OpenAIImageStyle", flags.OpenAIImageStyle, "natural"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	boolTests := []struct {
		name  string
		value bool
	}{
		{"SkipAudio", flags.SkipAudio},
		{"SkipImages", flags.SkipImages},
		{"Backfill", flags.Backfill},
		{"GenerateAnki", flags.GenerateAnki},
		{"AnkiCSV", flags.AnkiCSV},
		{"ListModels", flags.ListModels},
		{"SweepMedia", flags.SweepMedia},
		{"SweepDryRun", flags.SweepDryRun},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"DataDir", flags.DataDir},
		{"BatchFile", flags.BatchFile},
		{"Context", flags.Context},
		{"PartOfSpeech", flags.PartOfSpeech},
		{"OpenAIInstruction", flags.OpenAIInstruction},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}
