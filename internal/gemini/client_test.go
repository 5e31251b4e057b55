package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/ankiforge/internal/entry"
)

// stubCaller fakes the raw model boundary.
type stubCaller struct {
	textResponse   string
	textErr        error
	visionResponse string
	visionErr      error
	textCalls      []string
	visionCalls    int
}

func (s *stubCaller) generateText(ctx context.Context, prompt string, opts callOptions) (string, error) {
	s.textCalls = append(s.textCalls, prompt)
	return s.textResponse, s.textErr
}

func (s *stubCaller) generateVision(ctx context.Context, prompt string, imageData []byte, mimeType string, opts callOptions) (string, error) {
	s.visionCalls++
	return s.visionResponse, s.visionErr
}

func newTestClient(stub *stubCaller) *Client {
	return &Client{
		config:  DefaultConfig("test-key"),
		caller:  stub,
		breaker: newBreaker("test"),
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"{\"a\": 1}", "{\"a\": 1}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"  {\"a\": 1}  ", "{\"a\": 1}"},
	}

	for _, tt := range tests {
		if got := cleanJSONResponse(tt.input); got != tt.expected {
			t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestEnrich_VocabularyMode(t *testing.T) {
	stub := &stubCaller{
		textResponse: `{"definition":"lasting a very short time","ipa":"ɪˈfem.ər.əl",
			"example":"Fame is {{c1::ephemeral}}.","example_raw":"Fame is ephemeral.",
			"type":"adjective","image_query":"melting ice sculpture photography"}`,
	}
	c := newTestClient(stub)

	result, err := c.Enrich(context.Background(), "ephemeral", "fame is ephemeral", entry.ModeGeneralVocab)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if result.Definition != "lasting a very short time" {
		t.Errorf("Unexpected definition: %s", result.Definition)
	}
	if result.ImageQuery == "" {
		t.Error("Expected image query in vocabulary mode")
	}
	if len(stub.textCalls) != 1 || !strings.Contains(stub.textCalls[0], "vocabulary tutor") {
		t.Error("Expected vocabulary prompt profile")
	}
}

func TestEnrich_PronunciationModeDropsImageQuery(t *testing.T) {
	stub := &stubCaller{
		textResponse: `{"definition":"/ɪˈfem.ər.əl/","ipa":"ɪˈfem.ər.əl",
			"example":"Pronunciation tip for {{c1::ephemeral}}: stress the second syllable.",
			"example_raw":"Pronunciation tip for ephemeral: stress the second syllable.",
			"type":"adjective","image_query":"should be ignored"}`,
	}
	c := newTestClient(stub)

	result, err := c.Enrich(context.Background(), "ephemeral", "", entry.ModePronunciation)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if result.ImageQuery != "" {
		t.Errorf("Expected no image query in pronunciation mode, got '%s'", result.ImageQuery)
	}
	if !strings.Contains(stub.textCalls[0], "linguistic engine") {
		t.Error("Expected pronunciation prompt profile")
	}
}

func TestEnrich_MarkdownFencedResponse(t *testing.T) {
	stub := &stubCaller{
		textResponse: "```json\n{\"definition\":\"d\",\"example\":\"e {{c1::w}}\",\"example_raw\":\"e w\",\"type\":\"noun\"}\n```",
	}
	c := newTestClient(stub)

	result, err := c.Enrich(context.Background(), "w", "", entry.ModeGeneralVocab)
	if err != nil {
		t.Fatalf("Enrich failed on fenced response: %v", err)
	}
	if result.Definition != "d" {
		t.Errorf("Unexpected definition: %s", result.Definition)
	}
}

func TestEnrich_MissingFieldsFailsLoudly(t *testing.T) {
	stub := &stubCaller{textResponse: `{"definition":"only a definition"}`}
	c := newTestClient(stub)

	if _, err := c.Enrich(context.Background(), "w", "", entry.ModeGeneralVocab); err == nil {
		t.Error("Expected error for incomplete enrichment response")
	}
}

func TestEnrich_TransportErrorIsFatal(t *testing.T) {
	stub := &stubCaller{textErr: errors.New("boom")}
	c := newTestClient(stub)

	if _, err := c.Enrich(context.Background(), "w", "", entry.ModeGeneralVocab); err == nil {
		t.Error("Expected transport error to propagate")
	}
}

func TestJudgeNewMeaning(t *testing.T) {
	stub := &stubCaller{
		textResponse: `{"is_different": true, "reason": "Old is literal, new is idiomatic"}`,
	}
	c := newTestClient(stub)

	verdict, err := c.JudgeNewMeaning(context.Background(), "bury", "bury the hatchet", "to put in the ground", "bury a bone")
	if err != nil {
		t.Fatalf("JudgeNewMeaning failed: %v", err)
	}
	if !verdict.IsDifferent {
		t.Error("Expected different-meaning verdict")
	}
	if verdict.Reason == "" {
		t.Error("Expected a reason string")
	}
}

func TestJudgeNewMeaning_MalformedResponse(t *testing.T) {
	stub := &stubCaller{textResponse: "not json at all"}
	c := newTestClient(stub)

	if _, err := c.JudgeNewMeaning(context.Background(), "w", "", "", ""); err == nil {
		t.Error("Expected error for malformed judge response")
	}
}

func TestValidateImage(t *testing.T) {
	stub := &stubCaller{
		visionResponse: `{"description":"a dog digging","reason":"matches the concept","verdict":"PASS"}`,
	}
	c := newTestClient(stub)

	verdict, err := c.ValidateImage(context.Background(), []byte("img"), "image/jpeg", "bury", "dog burying bone")
	if err != nil {
		t.Fatalf("ValidateImage failed: %v", err)
	}
	if !verdict.Passed() {
		t.Error("Expected PASS verdict")
	}

	stub.visionResponse = `{"description":"album cover","reason":"contains text overlay","verdict":"FAIL"}`
	verdict, err = c.ValidateImage(context.Background(), []byte("img"), "image/jpeg", "bury", "")
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Passed() {
		t.Error("Expected FAIL verdict")
	}
}

func TestSmartImageQuery(t *testing.T) {
	stub := &stubCaller{textResponse: "\"dog burying bone in garden photography\"\n"}
	c := newTestClient(stub)

	query := c.SmartImageQuery(context.Background(), "bury", "The dog buried a bone.", "")
	if query != "dog burying bone in garden photography" {
		t.Errorf("Unexpected query: '%s'", query)
	}
}

func TestSmartImageQuery_FallsBackOnError(t *testing.T) {
	stub := &stubCaller{textErr: errors.New("unavailable")}
	c := newTestClient(stub)

	query := c.SmartImageQuery(context.Background(), "bury", "", "")
	if query != "bury action photography -text" {
		t.Errorf("Expected fallback query, got '%s'", query)
	}
}

func TestSmartImageQuery_FallsBackOnShortResponse(t *testing.T) {
	stub := &stubCaller{textResponse: "a"}
	c := newTestClient(stub)

	query := c.SmartImageQuery(context.Background(), "bury", "", "")
	if !strings.HasPrefix(query, "bury action photography") {
		t.Errorf("Expected fallback query, got '%s'", query)
	}
}
