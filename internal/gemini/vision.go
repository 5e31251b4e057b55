package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageVerdict is the vision validator's assessment of one candidate
// image. It is ephemeral; only whether the candidate passed survives.
type ImageVerdict struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
	Verdict     string `json:"verdict"` // "PASS" or "FAIL"
}

// Passed reports whether the candidate was approved.
func (v *ImageVerdict) Passed() bool {
	return strings.EqualFold(v.Verdict, "PASS")
}

// ValidateImage submits a candidate image together with the target word
// and context and returns the model's pass/fail verdict.
func (c *Client) ValidateImage(ctx context.Context, imageData []byte, mimeType, word, context_ string) (*ImageVerdict, error) {
	prompt := fmt.Sprintf(`Act as a strict quality assurance image validator.
Target concept: "%s"
Context: "%s"

Task: Analyze the image and determine if it matches the concept.

1. First, describe briefly what you see in the image.
2. Then, compare it to the target concept.
3. REJECT if:
   - It is completely unrelated.
   - It contains text overlay, slides, or charts.
   - It is an album cover or logo.
   - It is confusing or low quality.

Output JSON format ONLY:
{
  "description": "short description of image",
  "reason": "why it matches or fails",
  "verdict": "PASS" or "FAIL"
}`, word, context_)

	raw, err := c.generateWithImage(ctx, prompt, imageData, mimeType, callOptions{
		temperature:  0.0,
		jsonResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var verdict ImageVerdict
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &verdict); err != nil {
		return nil, fmt.Errorf("malformed validator response: %w", err)
	}

	return &verdict, nil
}
