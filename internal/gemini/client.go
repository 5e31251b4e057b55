package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-pro"

// Config holds the Gemini client settings.
type Config struct {
	APIKey string
	Model  string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  defaultModel,
	}
}

// callOptions tune a single model invocation.
type callOptions struct {
	temperature     float32
	maxOutputTokens int32
	jsonResponse    bool
}

// caller is the raw model invocation boundary; tests substitute a stub.
type caller interface {
	generateText(ctx context.Context, prompt string, opts callOptions) (string, error)
	generateVision(ctx context.Context, prompt string, imageData []byte, mimeType string, opts callOptions) (string, error)
}

// Client talks to the Gemini API with a circuit breaker in front of it.
type Client struct {
	config  *Config
	caller  caller
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = defaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		config:  config,
		caller:  &genaiCaller{client: gc, model: config.Model},
		breaker: newBreaker("gemini"),
	}, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// generate runs a text-only call through the breaker.
func (c *Client) generate(ctx context.Context, prompt string, opts callOptions) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.caller.generateText(ctx, prompt, opts)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// generateWithImage runs a multimodal call through the breaker.
func (c *Client) generateWithImage(ctx context.Context, prompt string, imageData []byte, mimeType string, opts callOptions) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.caller.generateVision(ctx, prompt, imageData, mimeType, opts)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// genaiCaller is the production caller backed by google.golang.org/genai.
type genaiCaller struct {
	client *genai.Client
	model  string
}

func (g *genaiCaller) generateText(ctx context.Context, prompt string, opts callOptions) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), buildConfig(opts))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty response")
	}
	return text, nil
}

func (g *genaiCaller) generateVision(ctx context.Context, prompt string, imageData []byte, mimeType string, opts callOptions) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(imageData, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, buildConfig(opts))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty response")
	}
	return text, nil
}

func buildConfig(opts callOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.temperature),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
	if opts.jsonResponse {
		cfg.ResponseMIMEType = "application/json"
	}
	if opts.maxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.maxOutputTokens
	}
	return cfg
}

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around JSON payloads.
func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}
