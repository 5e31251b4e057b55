package audio

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI TTS API.
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	cache  *audioCache
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	p := &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}
	if config.EnableCache && config.CacheDir != "" {
		p.cache = newAudioCache(config.CacheDir)
	}
	return p, nil
}

// Synthesize generates audio for the given request using OpenAI's TTS API
func (p *OpenAIProvider) Synthesize(ctx context.Context, req Request, outputFile string) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	speed := p.config.OpenAISpeed
	if req.Profile == ProfileWord {
		text = preprocessWord(text)
	} else {
		if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
			text += "."
		}
	}

	if p.cache != nil {
		if data, ok := p.cache.get(p.cacheKey(text, speed)); ok {
			return writeAudioFile(outputFile, data)
		}
	}

	speechReq := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		ResponseFormat: openai.SpeechResponseFormat(p.config.OutputFormat),
		Speed:          speed,
	}
	if p.config.OpenAIInstruction != "" {
		speechReq.Instructions = p.config.OpenAIInstruction
	}

	resp, err := p.client.CreateSpeech(ctx, speechReq)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return fmt.Errorf("failed to read audio stream: %w", err)
	}

	if p.cache != nil {
		p.cache.put(p.cacheKey(text, speed), data)
	}

	return writeAudioFile(outputFile, data)
}

func (p *OpenAIProvider) cacheKey(text string, speed float64) string {
	raw := fmt.Sprintf("%s|%s|%s|%.2f|%s",
		text, p.config.OpenAIModel, p.config.OpenAIVoice, speed, p.config.OutputFormat)
	return fmt.Sprintf("%x", md5.Sum([]byte(raw)))
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

// preprocessWord nudges the TTS model towards a clean single-word reading.
// A trailing comma slows the voice down slightly compared to a bare word.
func preprocessWord(word string) string {
	word = strings.TrimRight(word, ".!?,;:")
	return strings.ToLower(word) + ","
}

func writeAudioFile(outputFile string, data []byte) error {
	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// audioCache stores synthesized audio on disk keyed by request hash, so
// regenerating a deck does not re-bill identical TTS calls.
type audioCache struct {
	dir string
}

func newAudioCache(dir string) *audioCache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Warning: could not create audio cache directory: %v\n", err)
		return nil
	}
	return &audioCache{dir: dir}
}

func (c *audioCache) path(key string) string {
	return filepath.Join(c.dir, key+".audio")
}

func (c *audioCache) get(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *audioCache) put(key string, data []byte) {
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		fmt.Printf("Warning: could not write audio cache entry: %v\n", err)
	}
}
