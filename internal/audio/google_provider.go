package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	googleTTSURL     = "https://texttospeech.googleapis.com/v1/text:synthesize"
	googleTTSTimeout = 30 * time.Second
)

// GoogleProvider implements Provider for the Google Cloud TTS REST API.
type GoogleProvider struct {
	config     *Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
}

// googleTTSRequest is the synthesize request body.
type googleTTSRequest struct {
	Input       googleTTSInput       `json:"input"`
	Voice       googleTTSVoice       `json:"voice"`
	AudioConfig googleTTSAudioConfig `json:"audioConfig"`
}

type googleTTSInput struct {
	Text string `json:"text,omitempty"`
	SSML string `json:"ssml,omitempty"`
}

type googleTTSVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type googleTTSAudioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate"`
	Pitch         float64 `json:"pitch"`
	VolumeGainDb  float64 `json:"volumeGainDb"`
}

type googleTTSResponse struct {
	AudioContent string `json:"audioContent"`
}

// NewGoogleProvider creates a new Google Cloud TTS provider
func NewGoogleProvider(config *Config) *GoogleProvider {
	return &GoogleProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: googleTTSTimeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "google-tts",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		baseURL: googleTTSURL,
	}
}

// Synthesize generates audio via the Google TTS API. For the word profile
// with an IPA hint the request uses SSML phoneme markup forcing literal
// phoneme pronunciation; when the service rejects that (invalid phonetic
// string), the call retries once with plain text before giving up.
func (p *GoogleProvider) Synthesize(ctx context.Context, req Request, outputFile string) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	body := p.buildRequest(req)
	audio, err := p.synthesize(ctx, body)
	if err != nil {
		if body.Input.SSML != "" {
			// Invalid IPA is the usual culprit; retry without it
			fmt.Printf("  Retrying TTS without phoneme markup: %v\n", err)
			plain := req
			plain.IPA = ""
			audio, err = p.synthesize(ctx, p.buildRequest(plain))
		}
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outputFile, audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}

// buildRequest maps a synthesis request onto the profile's voice tuning.
func (p *GoogleProvider) buildRequest(req Request) googleTTSRequest {
	encoding := "MP3"
	if strings.EqualFold(p.config.OutputFormat, "wav") {
		encoding = "LINEAR16"
	}
	out := googleTTSRequest{
		Voice: googleTTSVoice{LanguageCode: "en-US"},
		AudioConfig: googleTTSAudioConfig{
			AudioEncoding: encoding,
			SpeakingRate:  1.0,
			Pitch:         0.0,
			VolumeGainDb:  1.0,
		},
	}

	if req.Profile == ProfileSentence {
		out.Voice.Name = p.config.GoogleSentenceVoice
		// Trailing period gives the HD voice natural prosody
		text := strings.TrimSpace(req.Text)
		if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
			text += "."
		}
		out.Input.Text = text
		out.AudioConfig.SpeakingRate = 0.95
		return out
	}

	out.Voice.Name = p.config.GoogleWordVoice
	if req.IPA != "" {
		cleanIPA := strings.TrimSpace(strings.ReplaceAll(req.IPA, "/", ""))
		out.Input.SSML = fmt.Sprintf(
			`<speak><phoneme alphabet="ipa" ph="%s">%s</phoneme></speak>`,
			cleanIPA, req.Text)
	} else {
		out.Input.Text = strings.ToLower(strings.TrimSpace(req.Text))
	}

	return out
}

func (p *GoogleProvider) synthesize(ctx context.Context, body googleTTSRequest) ([]byte, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.doRequest(ctx, body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (p *GoogleProvider) doRequest(ctx context.Context, body googleTTSRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s?key=%s", p.baseURL, p.config.GoogleAPIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Google TTS API error (%d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	var ttsResp googleTTSResponse
	if err := json.NewDecoder(resp.Body).Decode(&ttsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(ttsResp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio data received from Google TTS")
	}

	return audio, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// IsAvailable checks if the provider is configured
func (p *GoogleProvider) IsAvailable() error {
	if p.config.GoogleAPIKey == "" {
		return fmt.Errorf("Google API key not configured")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
