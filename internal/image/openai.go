package image

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures DALL-E image generation
type OpenAIConfig struct {
	APIKey      string
	Model       string // "dall-e-2" or "dall-e-3"
	Size        string // e.g. "1024x1024"
	Quality     string // "standard" or "hd" (dall-e-3 only)
	Style       string // "natural" or "vivid" (dall-e-3 only)
	PromptModel string // Chat model used to craft the visual prompt
	CacheDir    string // Optional on-disk cache for generated images
}

// OpenAIClient generates illustration images with DALL-E. Instead of
// feeding the raw word to the image model, a chat model first turns the
// word and its example sentence into a concrete photographic scene
// description.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	size        string
	quality     string
	style       string
	promptModel string
	cacheDir    string
	lastPrompt  string
}

// NewOpenAIClient creates a new DALL-E image generation client
func NewOpenAIClient(config *OpenAIConfig) *OpenAIClient {
	model := config.Model
	if model == "" {
		model = "dall-e-3"
	}
	size := config.Size
	if size == "" {
		size = "1024x1024"
	}
	quality := config.Quality
	if quality == "" {
		quality = "standard"
	}
	style := config.Style
	if style == "" {
		style = "natural"
	}
	promptModel := config.PromptModel
	if promptModel == "" {
		promptModel = "gpt-4o-mini"
	}

	return &OpenAIClient{
		client:      openai.NewClient(config.APIKey),
		model:       model,
		size:        size,
		quality:     quality,
		style:       style,
		promptModel: promptModel,
		cacheDir:    config.CacheDir,
	}
}

// Generate produces an illustration for the word. The sentence gives
// the chat model a concrete scene to describe; an empty sentence falls
// back to a generic educational prompt.
func (c *OpenAIClient) Generate(ctx context.Context, word, sentence string) (*Candidate, error) {
	if cached, ok := c.readCache(word); ok {
		return &Candidate{Data: cached, MimeType: "image/png", Source: "dall-e-cache"}, nil
	}

	prompt, err := c.craftVisualPrompt(ctx, word, sentence)
	if err != nil {
		fmt.Printf("  Warning: prompt crafting failed, using fallback: %v\n", err)
		prompt = c.createEducationalPrompt(word)
	}
	c.lastPrompt = prompt

	req := openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		Size:           c.size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if c.model == "dall-e-3" {
		req.Quality = c.quality
		req.Style = c.style
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("DALL-E generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("DALL-E returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	c.writeCache(word, data)

	return &Candidate{Data: data, MimeType: "image/png", Source: "dall-e"}, nil
}

// craftVisualPrompt asks a chat model to act as a visual prompt
// director, turning the word and sentence into a scene description the
// image model can render literally.
func (c *OpenAIClient) craftVisualPrompt(ctx context.Context, word, sentence string) (string, error) {
	instruction := fmt.Sprintf(`You are a visual prompt director for an image generation model.
Describe a single concrete, photorealistic scene that unambiguously illustrates the word %q.
Base the scene on this sentence: %q
Rules: one scene, no text or letters anywhere in the image, no captions, no split panels.
Respond with the scene description only.`, word, sentence)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.promptModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	prompt := strings.TrimSpace(resp.Choices[0].Message.Content)
	if prompt == "" {
		return "", fmt.Errorf("empty prompt returned")
	}
	return prompt, nil
}

// createEducationalPrompt is the fallback when prompt crafting fails.
func (c *OpenAIClient) createEducationalPrompt(word string) string {
	return fmt.Sprintf("A simple, clear educational flashcard illustration of %s. "+
		"Photorealistic style, single subject, plain background, no text.", word)
}

// GetLastPrompt returns the prompt used for the most recent generation
func (c *OpenAIClient) GetLastPrompt() string {
	return c.lastPrompt
}

func (c *OpenAIClient) getCacheFilePath(word string) string {
	key := fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.ToLower(word), c.model, c.size, c.quality, c.style))))
	return filepath.Join(c.cacheDir, key+".png")
}

func (c *OpenAIClient) readCache(word string) ([]byte, bool) {
	if c.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.getCacheFilePath(word))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *OpenAIClient) writeCache(word string, data []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return
	}
	if err := os.WriteFile(c.getCacheFilePath(word), data, 0644); err != nil {
		fmt.Printf("Warning: could not cache generated image: %v\n", err)
	}
}
