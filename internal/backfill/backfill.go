package backfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	internal "codeberg.org/snonux/ankiforge/internal"
	"codeberg.org/snonux/ankiforge/internal/audio"
	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/gemini"
	"codeberg.org/snonux/ankiforge/internal/image"
	"codeberg.org/snonux/ankiforge/internal/media"
	"codeberg.org/snonux/ankiforge/internal/store"
)

// DefaultBudget bounds one backfill run. Slightly under the typical
// scheduler slot so the run always ends with a clean cursor write.
const DefaultBudget = 270 * time.Second

// EntryStore is the slice of the table the backfill needs.
type EntryStore interface {
	All() ([]entry.Entry, error)
	UpdateMedia(id string, field store.MediaField, filename string) error
	UpdateContent(id, definition, example, examplePlain, partOfSpeech, tags string) error
	SetCursor(id string) error
}

// Enricher regenerates text content for rescued entries.
type Enricher interface {
	Enrich(ctx context.Context, word, context_ string, mode entry.StudyMode) (*gemini.Enrichment, error)
}

// QueryWriter crafts an image search query for an existing entry.
type QueryWriter interface {
	SmartImageQuery(ctx context.Context, word, sentence, context_ string) string
}

// ImageFetcher returns a validated illustration or nil when no
// candidate passes.
type ImageFetcher interface {
	Fetch(ctx context.Context, query, word, wordContext string) (*image.Candidate, error)
}

// Options toggles the media stages.
type Options struct {
	SkipAudio   bool
	SkipImages  bool
	AudioFormat string // "mp3" (default) or "wav", names the audio files
}

// Result summarizes one backfill run.
type Result struct {
	Processed int  // rows that received at least one write
	Skipped   int  // rows already complete
	Rescued   int  // rows whose text content was regenerated
	Errors    int  // rows where some step failed (run continues)
	Finished  bool // false when the time budget expired mid-scan
}

// Processor fills missing media and rescues broken entries.
type Processor struct {
	entries EntryStore
	media   *media.Store
	enrich  Enricher
	queries QueryWriter
	tts     audio.Provider
	images  ImageFetcher
	opts    Options
}

// New creates a backfill processor with injected dependencies.
func New(entries EntryStore, mediaStore *media.Store, enrich Enricher, queries QueryWriter,
	tts audio.Provider, images ImageFetcher, opts Options) *Processor {
	return &Processor{
		entries: entries,
		media:   mediaStore,
		enrich:  enrich,
		queries: queries,
		tts:     tts,
		images:  images,
		opts:    opts,
	}
}

// Run scans the table until done or the deadline passes. The deadline
// is injected so tests can exercise the time-box without waiting. When
// the budget expires the cursor records where the scan stopped; the
// next run re-scans from the top and converges because complete rows
// are skipped without any API call.
func (p *Processor) Run(ctx context.Context, deadline time.Time) (*Result, error) {
	rows, err := p.entries.All()
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	result := &Result{Finished: true}

	for i := range rows {
		e := &rows[i]

		if err := ctx.Err(); err != nil {
			result.Finished = false
			p.saveCursor(e.ID)
			return result, err
		}
		if time.Now().After(deadline) {
			fmt.Printf("Time budget expired at entry %s, %d rows remaining\n", e.ID, len(rows)-i)
			result.Finished = false
			p.saveCursor(e.ID)
			return result, nil
		}

		if e.IsComplete() {
			result.Skipped++
			continue
		}

		worked, rescued, failed := p.repair(ctx, e)
		if rescued {
			result.Rescued++
		}
		if failed {
			result.Errors++
		}
		if worked {
			result.Processed++
		}
	}

	p.saveCursor("")
	return result, nil
}

// repair brings one entry closer to complete. Each step failing is
// counted but never stops the step after it.
func (p *Processor) repair(ctx context.Context, e *entry.Entry) (worked, rescued, failed bool) {
	if e.NeedsRescue() {
		if err := p.rescue(ctx, e); err != nil {
			fmt.Printf("Warning: rescue failed for %q: %v\n", e.Word, err)
			// Without text content there is nothing to record media
			// against; leave the row for the next run
			return false, false, true
		}
		worked, rescued = true, true
	}

	if !p.opts.SkipAudio && p.tts != nil {
		w, f := p.fillAudio(ctx, e)
		worked = worked || w
		failed = failed || f
	}
	if p.wantsImage(e) {
		w, f := p.fillImage(ctx, e)
		worked = worked || w
		failed = failed || f
	}

	return worked, rescued, failed
}

// rescue regenerates the text content of an entry that has a word but
// lost its definition.
func (p *Processor) rescue(ctx context.Context, e *entry.Entry) error {
	fmt.Printf("Rescuing entry %s (%q)\n", e.ID, e.Word)

	enrichment, err := p.enrich.Enrich(ctx, e.Word, e.Context, e.Mode())
	if err != nil {
		return err
	}

	e.Definition = enrichment.Definition
	e.Example = entry.EnsureClozeMarker(enrichment.Example, e.Word)
	e.ExamplePlain = entry.StripCloze(enrichment.ExampleRaw)
	if e.PartOfSpeech == "" {
		e.PartOfSpeech = enrichment.Type
	}

	return p.entries.UpdateContent(e.ID, e.Definition, e.Example, e.ExamplePlain, e.PartOfSpeech, e.Tags)
}

func (p *Processor) fillAudio(ctx context.Context, e *entry.Entry) (worked, failed bool) {
	base := internal.MediaBasename(e.Word)
	ext := audio.ExtensionForFormat(p.opts.AudioFormat)

	if e.AudioWord == "" {
		filename := "word_" + base + ext
		err := p.tts.Synthesize(ctx, audio.Request{
			Text:    e.Word,
			Profile: audio.ProfileWord,
			IPA:     p.ipaHint(e),
		}, p.media.Path(media.KindAudio, filename))
		if err != nil {
			fmt.Printf("Warning: word audio failed for %q: %v\n", e.Word, err)
			failed = true
		} else if err := p.entries.UpdateMedia(e.ID, store.FieldAudioWord, filename); err != nil {
			failed = true
		} else {
			e.AudioWord = filename
			worked = true
		}
	}

	sentence := strings.TrimSpace(e.ExamplePlain)
	if sentence == "" {
		sentence = strings.TrimSpace(entry.StripCloze(e.Example))
	}
	if e.AudioSent == "" && sentence != "" {
		filename := "sent_" + base + ext
		err := p.tts.Synthesize(ctx, audio.Request{
			Text:    sentence,
			Profile: audio.ProfileSentence,
		}, p.media.Path(media.KindAudio, filename))
		if err != nil {
			fmt.Printf("Warning: sentence audio failed for %q: %v\n", e.Word, err)
			failed = true
		} else if err := p.entries.UpdateMedia(e.ID, store.FieldAudioSent, filename); err != nil {
			failed = true
		} else {
			e.AudioSent = filename
			worked = true
		}
	}

	return worked, failed
}

func (p *Processor) wantsImage(e *entry.Entry) bool {
	if p.opts.SkipImages || p.images == nil || p.queries == nil {
		return false
	}
	return e.Mode() != entry.ModePronunciation && e.Image == ""
}

func (p *Processor) fillImage(ctx context.Context, e *entry.Entry) (worked, failed bool) {
	query := p.queries.SmartImageQuery(ctx, e.Word, e.ExamplePlain, e.Context)

	candidate, err := p.images.Fetch(ctx, query, e.Word, e.Context)
	if err != nil {
		fmt.Printf("Warning: image search failed for %q: %v\n", e.Word, err)
		return false, true
	}
	if candidate == nil {
		// No acceptable candidate this run; the cell stays empty and
		// the next run tries again
		return false, false
	}

	filename := "img_" + internal.MediaBasename(e.Word) + image.ExtensionForMime(candidate.MimeType)
	if err := p.media.Save(media.KindImage, filename, candidate.Data); err != nil {
		fmt.Printf("Warning: could not save image for %q: %v\n", e.Word, err)
		return false, true
	}
	if err := p.entries.UpdateMedia(e.ID, store.FieldImage, filename); err != nil {
		return false, true
	}

	e.Image = filename
	return true, false
}

// ipaHint recovers the IPA transcription for pronunciation entries,
// whose definition field holds it.
func (p *Processor) ipaHint(e *entry.Entry) string {
	if e.Mode() != entry.ModePronunciation {
		return ""
	}
	return strings.Trim(strings.TrimSpace(e.Definition), "/")
}

func (p *Processor) saveCursor(id string) {
	if err := p.entries.SetCursor(id); err != nil {
		fmt.Printf("Warning: could not save backfill cursor: %v\n", err)
	}
}
