package image

import (
	"context"
	"io"
)

// SearchResult represents a single image search result
type SearchResult struct {
	ID           string // Unique identifier
	URL          string // Direct URL to the image
	ThumbnailURL string // URL to thumbnail version
	Width        int    // Image width in pixels
	Height       int    // Image height in pixels
	Description  string // Image title or description
	MimeType     string // MIME type reported by the provider
	Source       string // Source provider (e.g., "customsearch")
}

// SearchOptions configures the image search
type SearchOptions struct {
	Query      string // Search query, usually an AI-crafted scene description
	NumResults int    // Number of candidates to request
	SafeSearch bool   // Enable safe search filtering
}

// DefaultSearchOptions returns defaults tuned for flashcard photos. Three
// candidates are enough: validation stops at the first one that passes.
func DefaultSearchOptions(query string) *SearchOptions {
	return &SearchOptions{
		Query:      query,
		NumResults: 3,
		SafeSearch: true,
	}
}

// ImageSearcher defines the interface for image search providers
type ImageSearcher interface {
	// Search performs an image search with the given options
	Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error)

	// Download downloads an image from the given URL
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// Name returns the name of the search provider
	Name() string
}

// SearchError represents an error from an image search provider
type SearchError struct {
	Provider string
	Code     string
	Message  string
}

func (e *SearchError) Error() string {
	return e.Provider + ": " + e.Message
}

// RateLimitError indicates that the API rate limit has been exceeded
type RateLimitError struct {
	Provider   string
	RetryAfter int // Seconds to wait before retry
}

func (e *RateLimitError) Error() string {
	return e.Provider + ": rate limit exceeded"
}
