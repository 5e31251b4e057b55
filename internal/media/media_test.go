package media

import (
	"os"
	"testing"
)

func TestSaveAndExists(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if s.Exists(KindAudio, "word_cat_1a2b.mp3") {
		t.Error("Expected artifact to not exist yet")
	}

	if err := s.Save(KindAudio, "word_cat_1a2b.mp3", []byte("audio")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !s.Exists(KindAudio, "word_cat_1a2b.mp3") {
		t.Error("Expected artifact to exist after save")
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	s, _ := NewStore(t.TempDir())

	if err := s.Save(KindImage, "img_cat.jpg", []byte("first")); err != nil {
		t.Fatal(err)
	}
	// Second save with different content must not overwrite
	if err := s.Save(KindImage, "img_cat.jpg", []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path(KindImage, "img_cat.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("Expected first stored blob to win, got '%s'", data)
	}
}

func TestSweep(t *testing.T) {
	s, _ := NewStore(t.TempDir())

	s.Save(KindAudio, "word_kept.mp3", []byte("a"))
	s.Save(KindAudio, "word_orphan.mp3", []byte("b"))
	s.Save(KindImage, "img_kept.jpg", []byte("c"))

	referenced := map[string]bool{
		"word_kept.mp3": true,
		"img_kept.jpg":  true,
	}

	// Dry run only reports
	result, err := s.Sweep(referenced, true)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(result.Orphans) != 1 || result.Orphans[0] != "word_orphan.mp3" {
		t.Errorf("Expected one orphan, got %v", result.Orphans)
	}
	if result.Removed != 0 {
		t.Errorf("Dry run must not remove, removed %d", result.Removed)
	}
	if !s.Exists(KindAudio, "word_orphan.mp3") {
		t.Error("Dry run must leave orphan in place")
	}

	// Real sweep removes
	result, err = s.Sweep(referenced, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Removed != 1 {
		t.Errorf("Expected 1 removal, got %d", result.Removed)
	}
	if s.Exists(KindAudio, "word_orphan.mp3") {
		t.Error("Expected orphan removed")
	}
	if !s.Exists(KindAudio, "word_kept.mp3") || !s.Exists(KindImage, "img_kept.jpg") {
		t.Error("Expected referenced artifacts kept")
	}
}
