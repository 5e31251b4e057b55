package anki

import (
	"encoding/csv"
	"fmt"
	"os"

	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/media"
)

// Card represents a single Anki flashcard
type Card struct {
	Word         string
	Definition   string
	Example      string // carries the {{c1::...}} cloze
	Context      string
	PartOfSpeech string
	Tags         string
	AudioWord    string // absolute path to the media file, or ""
	AudioSent    string
	Image        string
}

// EntryStore is the slice of the table the exporter needs.
type EntryStore interface {
	Pending() ([]entry.Entry, error)
	MarkExported(ids []string) error
}

// Options configures the export
type Options struct {
	DeckName       string
	IncludeHeaders bool // CSV only
}

// DefaultOptions returns sensible defaults
func DefaultOptions() *Options {
	return &Options{
		DeckName:       "Vocabulary",
		IncludeHeaders: true,
	}
}

// Result reports what an export run produced.
type Result struct {
	Cards      int
	OutputPath string
}

// Exporter builds decks from pending entries and flips their status
// once the deck file is safely on disk.
type Exporter struct {
	entries EntryStore
	media   *media.Store
	options *Options
}

// NewExporter creates a new exporter
func NewExporter(entries EntryStore, mediaStore *media.Store, options *Options) *Exporter {
	if options == nil {
		options = DefaultOptions()
	}
	return &Exporter{
		entries: entries,
		media:   mediaStore,
		options: options,
	}
}

// ExportCSV writes pending entries to an Anki-importable CSV file.
func (x *Exporter) ExportCSV(outputPath string) (*Result, error) {
	rows, err := x.entries.Pending()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending entries: %w", err)
	}
	if len(rows) == 0 {
		return &Result{OutputPath: outputPath}, nil
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if x.options.IncludeHeaders {
		headers := []string{"Word", "Definition", "Example", "Context", "Type", "Tags",
			"AudioWord", "Image", "AudioSent"}
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, e := range rows {
		record := []string{
			e.Word,
			e.Definition,
			e.Example,
			e.Context,
			e.PartOfSpeech,
			e.Tags,
			formatAudioField(e.AudioWord),
			formatImageField(e.Image),
			formatAudioField(e.AudioSent),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write card: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	if err := x.markExported(rows); err != nil {
		return nil, err
	}

	return &Result{Cards: len(rows), OutputPath: outputPath}, nil
}

// ExportAPKG writes pending entries to an .apkg package including the
// media files themselves.
func (x *Exporter) ExportAPKG(outputPath string) (*Result, error) {
	rows, err := x.entries.Pending()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending entries: %w", err)
	}
	if len(rows) == 0 {
		return &Result{OutputPath: outputPath}, nil
	}

	generator := NewAPKGGenerator(x.options.DeckName)
	for _, e := range rows {
		generator.AddCard(x.cardFromEntry(e))
	}

	if err := generator.GenerateAPKG(outputPath); err != nil {
		return nil, err
	}

	if err := x.markExported(rows); err != nil {
		return nil, err
	}

	return &Result{Cards: len(rows), OutputPath: outputPath}, nil
}

// cardFromEntry resolves bare media filenames into paths on disk. A
// filename whose file went missing exports as an empty field rather
// than a broken reference.
func (x *Exporter) cardFromEntry(e entry.Entry) Card {
	card := Card{
		Word:         e.Word,
		Definition:   e.Definition,
		Example:      e.Example,
		Context:      e.Context,
		PartOfSpeech: e.PartOfSpeech,
		Tags:         e.Tags,
	}
	if e.AudioWord != "" && x.media.Exists(media.KindAudio, e.AudioWord) {
		card.AudioWord = x.media.Path(media.KindAudio, e.AudioWord)
	}
	if e.AudioSent != "" && x.media.Exists(media.KindAudio, e.AudioSent) {
		card.AudioSent = x.media.Path(media.KindAudio, e.AudioSent)
	}
	if e.Image != "" && x.media.Exists(media.KindImage, e.Image) {
		card.Image = x.media.Path(media.KindImage, e.Image)
	}
	return card
}

func (x *Exporter) markExported(rows []entry.Entry) error {
	ids := make([]string, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.ID)
	}
	if err := x.entries.MarkExported(ids); err != nil {
		return fmt.Errorf("deck written but status update failed: %w", err)
	}
	return nil
}

// formatAudioField formats the audio file reference for Anki
func formatAudioField(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filename)
}

// formatImageField formats image file reference for Anki
func formatImageField(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s">`, filename)
}
