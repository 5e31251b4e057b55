package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/media"
)

type fakeEntryStore struct {
	pending  []entry.Entry
	exported []string
	markErr  error
}

func (s *fakeEntryStore) Pending() ([]entry.Entry, error) {
	return s.pending, nil
}

func (s *fakeEntryStore) MarkExported(ids []string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.exported = append(s.exported, ids...)
	return nil
}

func newTestMediaStore(t *testing.T, files map[media.Kind]string) *media.Store {
	t.Helper()
	store, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating media store: %v", err)
	}
	for kind, name := range files {
		if err := store.Save(kind, name, []byte("data")); err != nil {
			t.Fatalf("saving %s: %v", name, err)
		}
	}
	return store
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening CSV: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	return records
}

func TestExportCSVWrapsMediaReferences(t *testing.T) {
	entries := &fakeEntryStore{pending: []entry.Entry{{
		ID: "1", Word: "serendipity",
		Definition: "a fortunate accidental discovery",
		Example:    "It was pure {{c1::serendipity}}.",
		AudioWord:  "w.mp3", Image: "i.jpg", AudioSent: "s.mp3",
		Status: entry.StatusPending,
	}}}
	mediaStore := newTestMediaStore(t, map[media.Kind]string{})
	x := NewExporter(entries, mediaStore, nil)

	out := filepath.Join(t.TempDir(), "deck.csv")
	result, err := x.ExportCSV(out)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if result.Cards != 1 {
		t.Errorf("Cards = %d, want 1", result.Cards)
	}

	records := readCSV(t, out)
	if len(records) != 2 {
		t.Fatalf("got %d records, want header plus 1 card", len(records))
	}
	row := records[1]
	if row[6] != "[sound:w.mp3]" {
		t.Errorf("AudioWord cell = %q, want [sound:w.mp3]", row[6])
	}
	if row[7] != `<img src="i.jpg">` {
		t.Errorf("Image cell = %q, want wrapped img tag", row[7])
	}
	if row[8] != "[sound:s.mp3]" {
		t.Errorf("AudioSent cell = %q, want [sound:s.mp3]", row[8])
	}
}

func TestExportCSVEmptyMediaStaysEmpty(t *testing.T) {
	entries := &fakeEntryStore{pending: []entry.Entry{{
		ID: "1", Word: "word", Definition: "def", Example: "The {{c1::word}}.",
		AudioWord: "w.mp3", Status: entry.StatusPending,
	}}}
	x := NewExporter(entries, newTestMediaStore(t, nil), nil)

	out := filepath.Join(t.TempDir(), "deck.csv")
	if _, err := x.ExportCSV(out); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	row := readCSV(t, out)[1]
	if row[7] != "" {
		t.Errorf("empty image exported as %q, want empty cell", row[7])
	}
	if row[8] != "" {
		t.Errorf("empty sentence audio exported as %q, want empty cell", row[8])
	}
}

func TestExportCSVMarksExported(t *testing.T) {
	entries := &fakeEntryStore{pending: []entry.Entry{
		{ID: "1", Word: "alpha", Status: entry.StatusPending},
		{ID: "2", Word: "beta", Status: entry.StatusPending},
	}}
	x := NewExporter(entries, newTestMediaStore(t, nil), nil)

	if _, err := x.ExportCSV(filepath.Join(t.TempDir(), "deck.csv")); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	if len(entries.exported) != 2 {
		t.Fatalf("exported %v, want both ids flipped", entries.exported)
	}
}

func TestExportCSVNothingPending(t *testing.T) {
	entries := &fakeEntryStore{}
	x := NewExporter(entries, newTestMediaStore(t, nil), nil)

	out := filepath.Join(t.TempDir(), "deck.csv")
	result, err := x.ExportCSV(out)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if result.Cards != 0 {
		t.Errorf("Cards = %d, want 0", result.Cards)
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("empty export should not create a file")
	}
	if len(entries.exported) != 0 {
		t.Error("status flipped with nothing exported")
	}
}

func TestExportCSVMarkFailureSurfaces(t *testing.T) {
	entries := &fakeEntryStore{
		pending: []entry.Entry{{ID: "1", Word: "alpha"}},
		markErr: fmt.Errorf("db locked"),
	}
	x := NewExporter(entries, newTestMediaStore(t, nil), nil)

	if _, err := x.ExportCSV(filepath.Join(t.TempDir(), "deck.csv")); err == nil {
		t.Fatal("ExportCSV() = nil error, want status update failure")
	}
}

func TestCardFromEntryMissingFile(t *testing.T) {
	mediaStore := newTestMediaStore(t, map[media.Kind]string{
		media.KindAudio: "w.mp3",
	})
	x := NewExporter(&fakeEntryStore{}, mediaStore, nil)

	card := x.cardFromEntry(entry.Entry{
		Word: "alpha", AudioWord: "w.mp3", AudioSent: "gone.mp3", Image: "gone.jpg",
	})

	if card.AudioWord == "" {
		t.Error("existing audio file should resolve to a path")
	}
	if card.AudioSent != "" || card.Image != "" {
		t.Errorf("missing files should export empty: %+v", card)
	}
}

func TestFormatFields(t *testing.T) {
	if got := formatAudioField(""); got != "" {
		t.Errorf("formatAudioField(\"\") = %q", got)
	}
	if got := formatImageField(""); got != "" {
		t.Errorf("formatImageField(\"\") = %q", got)
	}
	if got := formatAudioField("a.mp3"); got != "[sound:a.mp3]" {
		t.Errorf("formatAudioField = %q", got)
	}
	if got := formatImageField("i.png"); got != `<img src="i.png">` {
		t.Errorf("formatImageField = %q", got)
	}
}
