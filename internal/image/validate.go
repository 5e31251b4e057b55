package image

import (
	"context"
	"fmt"
	"strings"
)

// Validator judges whether a downloaded candidate actually depicts the
// word being studied.
type Validator interface {
	Validate(ctx context.Context, imageData []byte, mimeType, word, wordContext string) (bool, string, error)
}

// Candidate is an accepted image ready for persistence.
type Candidate struct {
	Data     []byte
	MimeType string
	Source   string
}

// ValidatedFetcher combines a searcher with an AI validator. Search
// results are tried strictly in ranking order; the first candidate that
// downloads cleanly and passes validation wins and no further results
// are fetched.
type ValidatedFetcher struct {
	searcher  ImageSearcher
	validator Validator
}

// NewValidatedFetcher creates a fetcher backed by the given searcher
// and validator
func NewValidatedFetcher(searcher ImageSearcher, validator Validator) *ValidatedFetcher {
	return &ValidatedFetcher{
		searcher:  searcher,
		validator: validator,
	}
}

// Fetch searches for the query and returns the first candidate that
// passes validation. Exhausting every candidate without a pass is a
// normal outcome and returns (nil, nil); the entry simply stays without
// an image. Only the search itself failing is an error.
func (f *ValidatedFetcher) Fetch(ctx context.Context, query, word, wordContext string) (*Candidate, error) {
	results, err := f.searcher.Search(ctx, DefaultSearchOptions(query))
	if err != nil {
		return nil, fmt.Errorf("image search failed: %w", err)
	}

	for _, result := range results {
		data, err := fetchBytes(ctx, f.searcher, result.URL)
		if err != nil {
			fmt.Printf("  Warning: could not download candidate %s: %v\n", result.ID, err)
			continue
		}

		mimeType := result.MimeType
		if mimeType == "" {
			mimeType = sniffMimeType(data)
		}

		ok, reason, err := f.validator.Validate(ctx, data, mimeType, word, wordContext)
		if err != nil {
			fmt.Printf("  Warning: validation error for candidate %s: %v\n", result.ID, err)
			continue
		}
		if !ok {
			fmt.Printf("  Rejected candidate %s: %s\n", result.ID, reason)
			continue
		}

		return &Candidate{
			Data:     data,
			MimeType: mimeType,
			Source:   result.Source,
		}, nil
	}

	return nil, nil
}

// ExtensionForMime maps an image MIME type to a file extension.
func ExtensionForMime(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// sniffMimeType inspects magic bytes when the provider did not report
// a MIME type.
func sniffMimeType(data []byte) string {
	switch {
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return "image/gif"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
