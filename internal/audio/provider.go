package audio

import (
	"context"
	"fmt"
	"strings"
)

// Profile selects the voice tuning for a synthesis request.
type Profile string

const (
	// ProfileWord is tuned for isolated words and supports an IPA hint.
	ProfileWord Profile = "word"

	// ProfileSentence is tuned for full sentences; plain text only.
	ProfileSentence Profile = "sentence"
)

// Request describes one synthesis call.
type Request struct {
	Text    string
	Profile Profile
	IPA     string // optional phonetic transcription, word profile only
}

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// Synthesize generates audio for the request and saves it to the
	// specified file
	Synthesize(ctx context.Context, req Request, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // Provider name: "google" or "openai"
	OutputFormat string // Output format: "mp3" or "wav"

	// Google Cloud TTS settings
	GoogleAPIKey        string
	GoogleWordVoice     string // Studio voice, supports SSML phoneme markup
	GoogleSentenceVoice string // HD conversational voice, plain text only

	// OpenAI settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "nova", ...
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts

	// Caching
	EnableCache bool
	CacheDir    string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:            "google",
		OutputFormat:        "mp3",
		GoogleWordVoice:     "en-US-Studio-O",
		GoogleSentenceVoice: "en-US-Chirp3-HD-Leda",
		OpenAIModel:         "tts-1",
		OpenAIVoice:         "nova",
		OpenAISpeed:         1.0,
	}
}

// ExtensionForFormat returns the filename extension for an output
// format. Unknown or empty formats get ".mp3".
func ExtensionForFormat(format string) string {
	if strings.EqualFold(format, "wav") {
		return ".wav"
	}
	return ".mp3"
}

// NewProvider creates the appropriate audio provider based on
// configuration. When both a Google and an OpenAI key are present the
// Google provider is primary with OpenAI as fallback.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "google":
		if config.GoogleAPIKey == "" {
			return nil, fmt.Errorf("Google API key is required")
		}
		primary := NewGoogleProvider(config)
		if config.OpenAIKey != "" {
			fallback, err := NewOpenAIProvider(config)
			if err != nil {
				return nil, err
			}
			return NewProviderWithFallback(primary, fallback), nil
		}
		return primary, nil

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary
// if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Synthesize tries the primary provider first, falls back to secondary on
// error
func (p *ProviderWithFallback) Synthesize(ctx context.Context, req Request, outputFile string) error {
	err := p.primary.Synthesize(ctx, req, outputFile)
	if err != nil {
		fmt.Printf("Primary provider (%s) failed: %v. Falling back to %s\n",
			p.primary.Name(), err, p.fallback.Name())

		return p.fallback.Synthesize(ctx, req, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
