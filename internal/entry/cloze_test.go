package entry

import (
	"strings"
	"testing"
)

func TestEnsureClozeMarker_AlreadyPresent(t *testing.T) {
	example := "The {{c1::cat}} sat on the mat."
	if got := EnsureClozeMarker(example, "cat"); got != example {
		t.Errorf("Expected example untouched, got '%s'", got)
	}
}

func TestEnsureClozeMarker_WrapsLiteralWord(t *testing.T) {
	got := EnsureClozeMarker("A resilient person recovers quickly.", "resilient")
	want := "A {{c1::resilient}} person recovers quickly."
	if got != want {
		t.Errorf("EnsureClozeMarker = '%s', want '%s'", got, want)
	}
}

func TestEnsureClozeMarker_CaseInsensitive(t *testing.T) {
	got := EnsureClozeMarker("Resilient people adapt.", "resilient")
	if got != "{{c1::Resilient}} people adapt." {
		t.Errorf("Expected case-preserving wrap, got '%s'", got)
	}
}

func TestEnsureClozeMarker_WholeWordOnly(t *testing.T) {
	// "cat" must not be wrapped inside "catalog"
	got := EnsureClozeMarker("Check the catalog.", "cat")
	if !strings.HasPrefix(got, "Note on {{c1::cat}}:") {
		t.Errorf("Expected synthetic note for missing whole word, got '%s'", got)
	}
}

func TestEnsureClozeMarker_SynthesizesNote(t *testing.T) {
	got := EnsureClozeMarker("Something entirely unrelated.", "ephemeral")
	want := "Note on {{c1::ephemeral}}: Something entirely unrelated."
	if got != want {
		t.Errorf("EnsureClozeMarker = '%s', want '%s'", got, want)
	}
}

func TestEnsureClozeMarker_Phrase(t *testing.T) {
	got := EnsureClozeMarker("I can't put up with the noise.", "put up with")
	want := "I can't {{c1::put up with}} the noise."
	if got != want {
		t.Errorf("EnsureClozeMarker = '%s', want '%s'", got, want)
	}
}

func TestEnsureClozeMarker_EmptyInputs(t *testing.T) {
	if got := EnsureClozeMarker("", "word"); got != "" {
		t.Errorf("Expected empty example to pass through, got '%s'", got)
	}
	if got := EnsureClozeMarker("example", ""); got != "example" {
		t.Errorf("Expected example without target to pass through, got '%s'", got)
	}
}

func TestStripCloze(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The {{c1::cat}} sat.", "The cat sat."},
		{"{{c1::One}} and {{c2::two}}.", "One and two."},
		{"No markup here.", "No markup here."},
	}

	for _, tt := range tests {
		if got := StripCloze(tt.input); got != tt.expected {
			t.Errorf("StripCloze(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
