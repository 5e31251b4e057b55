package gemini

import (
	"context"
	"fmt"
	"strings"
)

// SmartImageQuery builds a search query describing the visual scene for a
// word, used by the backfill pass for rows without a stored image query.
// It never fails: any error falls back to a generic query so the row can
// still be attempted.
func (c *Client) SmartImageQuery(ctx context.Context, word, sentence, context_ string) string {
	baseContext := sentence
	if baseContext == "" {
		baseContext = context_
	}
	if baseContext == "" {
		baseContext = word
	}

	prompt := fmt.Sprintf(`You are a visual search expert.
Task: Create ONE image search query for: "%s".
Context: "%s".

RULES:
1. Describe the VISUAL SCENE accurately.
2. "Bury" -> "person digging hole with shovel in dirt photography" OR "dog burying bone".
3. AVOID ABSTRACT TERMS. Be descriptive of the physical action.
4. FORBIDDEN: text, slides, album covers, cartoons.
OUTPUT: ONLY the search query string.`, word, baseContext)

	raw, err := c.generate(ctx, prompt, callOptions{
		temperature:     0.3,
		maxOutputTokens: 50,
	})
	if err != nil {
		return fallbackQuery(word)
	}

	query := strings.TrimSpace(raw)
	query = strings.Trim(query, `"`)
	query = strings.ReplaceAll(query, "\n", " ")
	if len(query) < 3 {
		return fallbackQuery(word)
	}

	return query
}

func fallbackQuery(word string) string {
	return fmt.Sprintf("%s action photography -text", word)
}
