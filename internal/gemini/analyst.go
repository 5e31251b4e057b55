package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/snonux/ankiforge/internal/entry"
)

// Enrichment is the structured card content produced for one submission.
// ImageQuery is empty in pronunciation mode.
type Enrichment struct {
	Definition string `json:"definition"`
	IPA        string `json:"ipa"`
	Example    string `json:"example"`
	ExampleRaw string `json:"example_raw"`
	Type       string `json:"type"`
	ImageQuery string `json:"image_query"`
}

// Enrich asks the model for card content for a word. The prompt profile
// is selected by study mode. A transport error or a response missing the
// required fields is returned as an error; the caller treats it as fatal
// to the entry.
func (c *Client) Enrich(ctx context.Context, word, context_ string, mode entry.StudyMode) (*Enrichment, error) {
	var prompt string
	if mode == entry.ModePronunciation {
		prompt = pronunciationPrompt(word, context_)
	} else {
		prompt = vocabularyPrompt(word, context_)
	}

	raw, err := c.generate(ctx, prompt, callOptions{
		temperature:  0.2,
		jsonResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var result Enrichment
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &result); err != nil {
		return nil, fmt.Errorf("malformed enrichment response: %w", err)
	}

	// An entry is never persisted without its text content
	if result.Definition == "" || result.Example == "" || result.ExampleRaw == "" {
		return nil, fmt.Errorf("enrichment response missing required fields: %q", raw)
	}

	if mode == entry.ModePronunciation {
		result.ImageQuery = ""
	}

	return &result, nil
}

func pronunciationPrompt(word, context string) string {
	return fmt.Sprintf(`You are a linguistic engine. Analyze: "%s". Context: "%s".
TASK: Create pronunciation data for an Anki cloze card.
CRITICAL: You MUST use the cloze format {{c1::word}} in the 'example' field.
JSON schema:
{
  "definition": "IPA transcription (e.g. /wɜːrd/).",
  "ipa": "ˌaɪ.dəmˈpoʊ.tənt",
  "example": "Pronunciation tip for {{c1::%s}}: [tip regarding stress/linking]",
  "example_raw": "Pronunciation tip for %s: [tip regarding stress/linking]",
  "type": "Part of speech",
  "image_query": null
}`, word, context, word, word)
}

func vocabularyPrompt(word, context string) string {
	return fmt.Sprintf(`You are an expert vocabulary tutor.
INPUT: Word: "%s", Context: "%s".
TASK: Create Anki card JSON.
RULES:
1. Use the context to understand the intended meaning.
2. GENERATE A NEW "example" sentence.
3. The "example" must be clear and use the word naturally.
4. The "image_query" must describe a concrete visual scene. FORBIDDEN in it: text, slides, album covers, cartoons.
JSON schema:
{
  "definition": "Concise definition (max 15 words).",
  "ipa": "ˌaɪ.dəmˈpoʊ.tənt",
  "example": "New sentence with Anki cloze: 'The {{c1::word}} ...'",
  "example_raw": "New sentence plain text.",
  "type": "Part of speech.",
  "image_query": "Optimized description for an image search"
}`, word, context)
}
