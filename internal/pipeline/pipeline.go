package pipeline

import (
	"context"
	"fmt"
	"strings"

	internal "codeberg.org/snonux/ankiforge/internal"
	"codeberg.org/snonux/ankiforge/internal/audio"
	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/gemini"
	"codeberg.org/snonux/ankiforge/internal/image"
	"codeberg.org/snonux/ankiforge/internal/media"
)

// Submission is one word the learner wants a card for.
type Submission struct {
	Word         string
	Context      string
	PartOfSpeech string // optional, overrides the AI's guess
	Mode         entry.StudyMode
}

// EntryStore is the slice of the table the pipeline needs.
type EntryStore interface {
	FindByWord(word string) ([]entry.Entry, error)
	Append(e *entry.Entry) error
}

// Enricher produces card text content for a word.
type Enricher interface {
	Enrich(ctx context.Context, word, context_ string, mode entry.StudyMode) (*gemini.Enrichment, error)
}

// Judge decides whether a resubmitted word carries a new meaning.
type Judge interface {
	JudgeNewMeaning(ctx context.Context, word, newContext, oldDefinition, oldContext string) (*gemini.Verdict, error)
}

// ImageFetcher returns a validated illustration or nil when no
// candidate passes.
type ImageFetcher interface {
	Fetch(ctx context.Context, query, word, wordContext string) (*image.Candidate, error)
}

// Options toggles the media stages, mirroring the CLI flags.
type Options struct {
	SkipAudio   bool
	SkipImages  bool
	AudioFormat string // "mp3" (default) or "wav", names the audio files
}

// Result reports what happened to one submission.
type Result struct {
	Entry      *entry.Entry // nil when the submission was skipped
	Skipped    bool         // duplicate with the same meaning
	SkipReason string
	Polysemy   bool // accepted as a new sense of an existing word
}

// Pipeline wires the stages together. All dependencies are injected;
// the pipeline itself holds no configuration beyond Options.
type Pipeline struct {
	entries  EntryStore
	media    *media.Store
	enricher Enricher
	judge    Judge
	tts      audio.Provider
	images   ImageFetcher
	opts     Options
}

// New creates a pipeline. tts and images may be nil when the matching
// skip option is set.
func New(entries EntryStore, mediaStore *media.Store, enricher Enricher, judge Judge,
	tts audio.Provider, images ImageFetcher, opts Options) *Pipeline {
	return &Pipeline{
		entries:  entries,
		media:    mediaStore,
		enricher: enricher,
		judge:    judge,
		tts:      tts,
		images:   images,
		opts:     opts,
	}
}

// Process runs one submission through the full pipeline. A duplicate
// with the same meaning is rejected before any side effect happens.
// Enrichment failure aborts the submission; media failures do not.
func (p *Pipeline) Process(ctx context.Context, sub Submission) (*Result, error) {
	word := strings.TrimSpace(sub.Word)
	if word == "" {
		return nil, fmt.Errorf("submission has no word")
	}
	if sub.Mode == "" {
		sub.Mode = entry.ModeGeneralVocab
	}

	result := &Result{}

	existing, err := p.entries.FindByWord(word)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup failed: %w", err)
	}
	if len(existing) > 0 {
		// Judge against the first stored sense, the row a lookup
		// would surface.
		prior := existing[0]
		verdict, err := p.judge.JudgeNewMeaning(ctx, word, sub.Context, prior.Definition, prior.Context)
		if err != nil {
			// Fail open: an unreachable judge must never block a
			// legitimate submission. Worst case is one extra card.
			fmt.Printf("Warning: meaning judge unavailable, accepting %q as new sense: %v\n", word, err)
			result.Polysemy = true
		} else if !verdict.IsDifferent {
			result.Skipped = true
			result.SkipReason = verdict.Reason
			fmt.Printf("Skipping %q: %s\n", word, verdict.Reason)
			return result, nil
		} else {
			result.Polysemy = true
			fmt.Printf("Accepting %q as a distinct sense: %s\n", word, verdict.Reason)
		}
	}

	enrichment, err := p.enricher.Enrich(ctx, word, sub.Context, sub.Mode)
	if err != nil {
		return nil, fmt.Errorf("enrichment failed for %q: %w", word, err)
	}

	e := p.buildEntry(word, sub, enrichment, result.Polysemy)

	if !p.opts.SkipAudio && p.tts != nil {
		p.generateAudio(ctx, e, enrichment.IPA)
	}
	if p.wantsImage(e, enrichment) {
		p.generateImage(ctx, e, enrichment.ImageQuery, sub.Context)
	}

	if err := p.entries.Append(e); err != nil {
		return nil, fmt.Errorf("failed to append entry for %q: %w", word, err)
	}

	result.Entry = e
	return result, nil
}

func (p *Pipeline) buildEntry(word string, sub Submission, enrichment *gemini.Enrichment, polysemy bool) *entry.Entry {
	partOfSpeech := sub.PartOfSpeech
	if partOfSpeech == "" {
		partOfSpeech = enrichment.Type
	}

	e := &entry.Entry{
		ID:           internal.GenerateEntryID(word),
		Word:         word,
		Definition:   enrichment.Definition,
		Example:      entry.EnsureClozeMarker(enrichment.Example, word),
		ExamplePlain: entry.StripCloze(enrichment.ExampleRaw),
		Context:      sub.Context,
		PartOfSpeech: partOfSpeech,
		Status:       entry.StatusPending,
	}
	e.AddTag(string(sub.Mode))
	if polysemy {
		e.AddTag(entry.TagPolysemy)
	}
	return e
}

// generateAudio fills the word and sentence audio fields. Either call
// failing leaves its field empty for the backfill pass.
func (p *Pipeline) generateAudio(ctx context.Context, e *entry.Entry, ipa string) {
	base := internal.MediaBasename(e.Word)
	ext := audio.ExtensionForFormat(p.opts.AudioFormat)

	wordFile := "word_" + base + ext
	err := p.tts.Synthesize(ctx, audio.Request{
		Text:    e.Word,
		Profile: audio.ProfileWord,
		IPA:     ipa,
	}, p.media.Path(media.KindAudio, wordFile))
	if err != nil {
		fmt.Printf("Warning: word audio failed for %q: %v\n", e.Word, err)
	} else {
		e.AudioWord = wordFile
	}

	// Pronunciation entries defer sentence audio to the backfill
	// pass; only the word recording is made at submission time.
	if e.Mode() == entry.ModePronunciation {
		return
	}
	if strings.TrimSpace(e.ExamplePlain) == "" {
		return
	}
	sentFile := "sent_" + base + ext
	err = p.tts.Synthesize(ctx, audio.Request{
		Text:    e.ExamplePlain,
		Profile: audio.ProfileSentence,
	}, p.media.Path(media.KindAudio, sentFile))
	if err != nil {
		fmt.Printf("Warning: sentence audio failed for %q: %v\n", e.Word, err)
	} else {
		e.AudioSent = sentFile
	}
}

func (p *Pipeline) wantsImage(e *entry.Entry, enrichment *gemini.Enrichment) bool {
	if p.opts.SkipImages || p.images == nil {
		return false
	}
	if e.Mode() == entry.ModePronunciation {
		return false
	}
	return enrichment.ImageQuery != ""
}

// generateImage runs the validated image search. No candidate passing
// is normal; the field stays empty.
func (p *Pipeline) generateImage(ctx context.Context, e *entry.Entry, query, wordContext string) {
	candidate, err := p.images.Fetch(ctx, query, e.Word, wordContext)
	if err != nil {
		fmt.Printf("Warning: image search failed for %q: %v\n", e.Word, err)
		return
	}
	if candidate == nil {
		fmt.Printf("No acceptable image found for %q\n", e.Word)
		return
	}

	filename := "img_" + internal.MediaBasename(e.Word) + image.ExtensionForMime(candidate.MimeType)
	if err := p.media.Save(media.KindImage, filename, candidate.Data); err != nil {
		fmt.Printf("Warning: could not save image for %q: %v\n", e.Word, err)
		return
	}
	e.Image = filename
}
