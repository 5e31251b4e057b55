// Package processor glues the CLI flags to the pipeline components and
// runs the requested operation.
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	internal "codeberg.org/snonux/ankiforge/internal"
	"codeberg.org/snonux/ankiforge/internal/anki"
	"codeberg.org/snonux/ankiforge/internal/audio"
	"codeberg.org/snonux/ankiforge/internal/backfill"
	"codeberg.org/snonux/ankiforge/internal/batch"
	"codeberg.org/snonux/ankiforge/internal/cli"
	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/gemini"
	"codeberg.org/snonux/ankiforge/internal/image"
	"codeberg.org/snonux/ankiforge/internal/media"
	"codeberg.org/snonux/ankiforge/internal/pipeline"
	"codeberg.org/snonux/ankiforge/internal/store"
)

// Processor handles the main word processing logic
type Processor struct {
	flags *cli.Flags
}

// NewProcessor creates a new word processor
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{flags: flags}
}

// components holds the wired dependencies for one run.
type components struct {
	entries *store.Store
	media   *media.Store
	gemini  *gemini.Client
	tts     audio.Provider
	images  pipeline.ImageFetcher
}

func (c *components) close() {
	if c.entries != nil {
		c.entries.Close()
	}
}

func (p *Processor) setup(ctx context.Context) (*components, error) {
	if err := os.MkdirAll(p.flags.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := store.Open(filepath.Join(p.flags.DataDir, "vocabulary.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary table: %w", err)
	}

	mediaStore, err := media.NewStore(filepath.Join(p.flags.DataDir, "media"))
	if err != nil {
		entries.Close()
		return nil, fmt.Errorf("failed to open media store: %w", err)
	}

	geminiClient, err := gemini.NewClient(ctx, &gemini.Config{
		APIKey: cli.GetGeminiKey(),
		Model:  p.flags.GeminiModel,
	})
	if err != nil {
		entries.Close()
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &components{
		entries: entries,
		media:   mediaStore,
		gemini:  geminiClient,
	}

	if !p.flags.SkipAudio {
		c.tts, err = audio.NewProvider(p.audioConfig())
		if err != nil {
			c.close()
			return nil, fmt.Errorf("failed to create audio provider: %w", err)
		}
	}

	if !p.flags.SkipImages {
		c.images, err = p.imageFetcher(geminiClient)
		if err != nil {
			c.close()
			return nil, err
		}
	}

	return c, nil
}

func (p *Processor) audioConfig() *audio.Config {
	return &audio.Config{
		Provider:            p.flags.AudioProvider,
		OutputFormat:        p.flags.AudioFormat,
		GoogleAPIKey:        cli.GetGoogleTTSKey(),
		GoogleWordVoice:     p.flags.GoogleWordVoice,
		GoogleSentenceVoice: p.flags.GoogleSentenceVoice,
		OpenAIKey:           cli.GetOpenAIKey(),
		OpenAIModel:         p.flags.OpenAIModel,
		OpenAIVoice:         p.flags.OpenAIVoice,
		OpenAISpeed:         p.flags.OpenAISpeed,
		OpenAIInstruction:   p.flags.OpenAIInstruction,
		EnableCache:         true,
		CacheDir:            filepath.Join(p.flags.DataDir, ".audio_cache"),
	}
}

func (p *Processor) imageFetcher(geminiClient *gemini.Client) (pipeline.ImageFetcher, error) {
	switch p.flags.ImageAPI {
	case "customsearch":
		searcher := image.NewCustomSearchClient(cli.GetSearchKey(), cli.GetSearchEngineID())
		return image.NewValidatedFetcher(searcher, geminiValidator{client: geminiClient}), nil
	case "dalle":
		client := image.NewOpenAIClient(&image.OpenAIConfig{
			APIKey:   cli.GetOpenAIKey(),
			Model:    p.flags.OpenAIImageModel,
			Size:     p.flags.OpenAIImageSize,
			Quality:  p.flags.OpenAIImageQuality,
			Style:    p.flags.OpenAIImageStyle,
			CacheDir: filepath.Join(p.flags.DataDir, ".image_cache"),
		})
		return dalleFetcher{
			client:    client,
			promptDir: filepath.Join(p.flags.DataDir, "prompts"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown image API: %s", p.flags.ImageAPI)
	}
}

// geminiValidator adapts the Gemini vision verdict to the image
// package's validator interface.
type geminiValidator struct {
	client *gemini.Client
}

func (v geminiValidator) Validate(ctx context.Context, imageData []byte, mimeType, word, wordContext string) (bool, string, error) {
	verdict, err := v.client.ValidateImage(ctx, imageData, mimeType, word, wordContext)
	if err != nil {
		return false, "", err
	}
	return verdict.Passed(), verdict.Reason, nil
}

// imageGenerator is the slice of the DALL-E client the fetcher uses.
type imageGenerator interface {
	Generate(ctx context.Context, word, sentence string) (*image.Candidate, error)
	GetLastPrompt() string
}

// dalleFetcher generates an image instead of searching for one. The
// query doubles as the scene hint for the prompt director. The prompt
// that produced each image is saved under promptDir for inspection.
type dalleFetcher struct {
	client    imageGenerator
	promptDir string
}

func (f dalleFetcher) Fetch(ctx context.Context, query, word, wordContext string) (*image.Candidate, error) {
	candidate, err := f.client.Generate(ctx, word, query)
	if err != nil || candidate == nil {
		return candidate, err
	}
	f.savePrompt(word)
	return candidate, nil
}

func (f dalleFetcher) savePrompt(word string) {
	prompt := f.client.GetLastPrompt()
	if prompt == "" || f.promptDir == "" {
		return
	}
	if err := os.MkdirAll(f.promptDir, 0755); err != nil {
		fmt.Printf("  Warning: failed to save image prompt for %q: %v\n", word, err)
		return
	}
	promptFile := filepath.Join(f.promptDir, internal.SanitizeFilename(word)+"_prompt.txt")
	if err := os.WriteFile(promptFile, []byte(prompt), 0644); err != nil {
		fmt.Printf("  Warning: failed to save image prompt for %q: %v\n", word, err)
	}
}

func (p *Processor) newPipeline(c *components) *pipeline.Pipeline {
	return pipeline.New(c.entries, c.media, c.gemini, c.gemini, c.tts, c.images, pipeline.Options{
		SkipAudio:   p.flags.SkipAudio,
		SkipImages:  p.flags.SkipImages,
		AudioFormat: p.flags.AudioFormat,
	})
}

// ProcessSingleWord runs one submission through the pipeline.
func (p *Processor) ProcessSingleWord(word string) error {
	ctx := context.Background()
	c, err := p.setup(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	result, err := p.newPipeline(c).Process(ctx, pipeline.Submission{
		Word:         word,
		Context:      p.flags.Context,
		PartOfSpeech: p.flags.PartOfSpeech,
		Mode:         entry.ParseStudyMode(p.flags.Mode),
	})
	if err != nil {
		return err
	}

	if result.Skipped {
		fmt.Printf("Not added: %q already has a card with this meaning\n", word)
		return nil
	}
	fmt.Printf("Added %q (%s)\n", result.Entry.Word, result.Entry.ID)
	return nil
}

// ProcessBatch processes every submission in the batch file.
func (p *Processor) ProcessBatch() error {
	subs, err := batch.ReadSubmissionFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	c, err := p.setup(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	pipe := p.newPipeline(c)

	processedCount := 0
	skippedCount := 0
	errorCount := 0

	for i, sub := range subs {
		fmt.Printf("\nProcessing %d/%d: %s\n", i+1, len(subs), sub.Word)

		result, err := pipe.Process(ctx, sub)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", sub.Word, err)
			errorCount++
			continue
		}
		if result.Skipped {
			skippedCount++
			continue
		}
		processedCount++
	}

	fmt.Printf("\n=== Batch Processing Summary ===\n")
	fmt.Printf("Total words: %d\n", len(subs))
	fmt.Printf("Processed: %d\n", processedCount)
	fmt.Printf("Skipped (duplicate meaning): %d\n", skippedCount)
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}

	return nil
}

// RunBackfill repairs incomplete entries within the time budget.
func (p *Processor) RunBackfill() error {
	ctx := context.Background()
	c, err := p.setup(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	budget := time.Duration(p.flags.BackfillBudget) * time.Second
	if budget <= 0 {
		budget = backfill.DefaultBudget
	}

	proc := backfill.New(c.entries, c.media, c.gemini, c.gemini, c.tts, c.images, backfill.Options{
		SkipAudio:   p.flags.SkipAudio,
		SkipImages:  p.flags.SkipImages,
		AudioFormat: p.flags.AudioFormat,
	})

	result, err := proc.Run(ctx, time.Now().Add(budget))
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Backfill Summary ===\n")
	fmt.Printf("Repaired: %d\n", result.Processed)
	fmt.Printf("Already complete: %d\n", result.Skipped)
	if result.Rescued > 0 {
		fmt.Printf("Rescued (content regenerated): %d\n", result.Rescued)
	}
	if result.Errors > 0 {
		fmt.Printf("Errors: %d\n", result.Errors)
	}
	if !result.Finished {
		fmt.Println("Time budget expired; run again to continue")
	}

	return nil
}

// GenerateAnkiFile exports pending entries and returns the output path.
func (p *Processor) GenerateAnkiFile() (string, error) {
	entries, err := store.Open(filepath.Join(p.flags.DataDir, "vocabulary.db"))
	if err != nil {
		return "", fmt.Errorf("failed to open vocabulary table: %w", err)
	}
	defer entries.Close()

	mediaStore, err := media.NewStore(filepath.Join(p.flags.DataDir, "media"))
	if err != nil {
		return "", fmt.Errorf("failed to open media store: %w", err)
	}

	exporter := anki.NewExporter(entries, mediaStore, &anki.Options{
		DeckName:       p.flags.DeckName,
		IncludeHeaders: true,
	})

	var result *anki.Result
	if p.flags.AnkiCSV {
		result, err = exporter.ExportCSV(filepath.Join(p.flags.DataDir, "ankiforge_deck.csv"))
	} else {
		result, err = exporter.ExportAPKG(filepath.Join(p.flags.DataDir, "ankiforge_deck.apkg"))
	}
	if err != nil {
		return "", err
	}
	if result.Cards == 0 {
		fmt.Println("No pending entries to export")
		return "", nil
	}

	fmt.Printf("Exported %d cards\n", result.Cards)
	return result.OutputPath, nil
}

// SweepMedia removes media files no entry references.
func (p *Processor) SweepMedia() error {
	entries, err := store.Open(filepath.Join(p.flags.DataDir, "vocabulary.db"))
	if err != nil {
		return fmt.Errorf("failed to open vocabulary table: %w", err)
	}
	defer entries.Close()

	mediaStore, err := media.NewStore(filepath.Join(p.flags.DataDir, "media"))
	if err != nil {
		return fmt.Errorf("failed to open media store: %w", err)
	}

	rows, err := entries.All()
	if err != nil {
		return err
	}
	referenced := make(map[string]bool)
	for _, e := range rows {
		for _, name := range []string{e.AudioWord, e.AudioSent, e.Image} {
			if name != "" {
				referenced[name] = true
			}
		}
	}

	result, err := mediaStore.Sweep(referenced, p.flags.SweepDryRun)
	if err != nil {
		return err
	}

	fmt.Printf("Scanned %d media files, %d orphaned\n", result.Scanned, len(result.Orphans))
	if p.flags.SweepDryRun {
		for _, name := range result.Orphans {
			fmt.Printf("  would remove %s\n", name)
		}
	} else {
		fmt.Printf("Removed %d files\n", result.Removed)
	}

	return nil
}
