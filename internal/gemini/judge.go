package gemini

import (
	"context"
	"encoding/json"
	"fmt"
)

// Verdict is the duplicate/polysemy judge's decision for a resubmitted
// word.
type Verdict struct {
	IsDifferent bool   `json:"is_different"`
	Reason      string `json:"reason"`
}

// JudgeNewMeaning asks the model whether the new context implies a
// significantly different sense than the stored definition. Errors are
// returned as errors; the caller applies the fail-open policy (treat as
// different rather than silently dropping a legitimate new sense).
func (c *Client) JudgeNewMeaning(ctx context.Context, word, newContext, oldDefinition, oldContext string) (*Verdict, error) {
	prompt := fmt.Sprintf(`You are a strict linguistic judge avoiding duplicates in a database.

EXISTING ENTRY:
- Word: "%s"
- Definition: "%s"
- Context used: "%s"

NEW INPUT:
- Word: "%s"
- New context: "%s"

TASK:
Analyze if the new context implies a SIGNIFICANTLY DIFFERENT meaning
(e.g. phrasal verb variation, polysemy, noun vs verb) compared to the
existing definition.

OUTPUT JSON ONLY:
{
  "is_different": boolean,
  "reason": "Short explanation (e.g. 'Old is literal, new is idiomatic')"
}`, word, oldDefinition, oldContext, word, newContext)

	raw, err := c.generate(ctx, prompt, callOptions{
		temperature:  0.0,
		jsonResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &verdict); err != nil {
		return nil, fmt.Errorf("malformed judge response: %w", err)
	}

	return &verdict, nil
}
