package anki

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempMedia(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media-"+name), 0644); err != nil {
		t.Fatalf("writing media file: %v", err)
	}
	return path
}

func readZipEntry(t *testing.T, r *zip.ReadCloser, name string) []byte {
	t.Helper()
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		reader, err := f.Open()
		if err != nil {
			t.Fatalf("opening zip entry %s: %v", name, err)
		}
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("reading zip entry %s: %v", name, err)
		}
		return data
	}
	t.Fatalf("zip entry %s not found", name)
	return nil
}

func TestGenerateAPKG(t *testing.T) {
	mediaDir := t.TempDir()
	g := NewAPKGGenerator("Test Deck")
	g.AddCard(Card{
		Word:       "serendipity",
		Definition: "a fortunate accidental discovery",
		Example:    "It was pure {{c1::serendipity}}.",
		Tags:       "general_vocab",
		AudioWord:  writeTempMedia(t, mediaDir, "word_abc.mp3"),
		AudioSent:  writeTempMedia(t, mediaDir, "sent_abc.mp3"),
		Image:      writeTempMedia(t, mediaDir, "img_abc.jpg"),
	})
	g.AddCard(Card{
		Word:       "ephemeral",
		Definition: "lasting a very short time",
		Example:    "The {{c1::ephemeral}} blossoms fell within a week.",
	})

	outputPath := filepath.Join(t.TempDir(), "deck.apkg")
	if err := g.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}

	r, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("opening apkg: %v", err)
	}
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names["collection.anki2"] {
		t.Error("apkg missing collection.anki2")
	}
	if !names["media"] {
		t.Error("apkg missing media mapping")
	}

	var mapping map[string]string
	if err := json.Unmarshal(readZipEntry(t, r, "media"), &mapping); err != nil {
		t.Fatalf("parsing media mapping: %v", err)
	}
	if len(mapping) != 3 {
		t.Errorf("media mapping has %d entries, want 3", len(mapping))
	}
	wantFiles := map[string]bool{
		"word_abc.mp3": false, "sent_abc.mp3": false, "img_abc.jpg": false,
	}
	for num, filename := range mapping {
		if !names[num] {
			t.Errorf("mapped media file %s missing from zip", num)
		}
		if _, ok := wantFiles[filename]; !ok {
			t.Errorf("unexpected media filename %q", filename)
		}
		wantFiles[filename] = true
	}
	for filename, seen := range wantFiles {
		if !seen {
			t.Errorf("media file %q not in mapping", filename)
		}
	}
}

func TestGenerateAPKGSkipsMissingMedia(t *testing.T) {
	g := NewAPKGGenerator("Test Deck")
	g.AddCard(Card{
		Word:      "ghost",
		Example:   "A {{c1::ghost}} reference.",
		AudioWord: "/nonexistent/word.mp3",
		Image:     "/nonexistent/img.jpg",
	})

	outputPath := filepath.Join(t.TempDir(), "deck.apkg")
	if err := g.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() should tolerate missing media, got %v", err)
	}

	r, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("opening apkg: %v", err)
	}
	defer r.Close()

	var mapping map[string]string
	if err := json.Unmarshal(readZipEntry(t, r, "media"), &mapping); err != nil {
		t.Fatalf("parsing media mapping: %v", err)
	}
	if len(mapping) != 0 {
		t.Errorf("media mapping has %d entries, want 0", len(mapping))
	}
}

func TestSoundField(t *testing.T) {
	mediaDir := t.TempDir()
	path := writeTempMedia(t, mediaDir, "word_x.mp3")

	g := NewAPKGGenerator("Deck")
	g.mediaFiles["word_x.mp3"] = 0

	if got := g.soundField(path); got != "[sound:word_x.mp3]" {
		t.Errorf("soundField = %q", got)
	}
	if got := g.soundField(""); got != "" {
		t.Errorf("soundField(\"\") = %q", got)
	}
	if got := g.soundField("/nonexistent/a.mp3"); got != "" {
		t.Errorf("soundField(missing) = %q", got)
	}
}

func TestNoteTypeIsCloze(t *testing.T) {
	g := NewAPKGGenerator("Deck")
	model := g.createNoteTypeConfig()

	if model["type"] != 1 {
		t.Errorf("model type = %v, want 1 (cloze)", model["type"])
	}
	tmpls := model["tmpls"].([]map[string]interface{})
	if len(tmpls) != 1 {
		t.Fatalf("got %d templates, want 1", len(tmpls))
	}
	if !strings.Contains(tmpls[0]["qfmt"].(string), "{{cloze:Example}}") {
		t.Error("question template missing cloze of Example")
	}
}
