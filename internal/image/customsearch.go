package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	customSearchAPIURL  = "https://www.googleapis.com/customsearch/v1"
	customSearchTimeout = 30 * time.Second

	// queryNegatives filters out the result classes that never make good
	// flashcard images: walls of text, presentation slides, lyric cards,
	// album covers and screenshots.
	queryNegatives = " -text -slide -lyrics -album -screenshot"
)

// CustomSearchClient implements ImageSearcher for the Google Custom
// Search JSON API restricted to image results.
type CustomSearchClient struct {
	apiKey     string
	engineID   string
	httpClient *http.Client
	rateLimit  *rateLimiter
	baseURL    string
}

// customSearchResponse represents the API response structure
type customSearchResponse struct {
	Items []customSearchItem `json:"items"`
	Error *customSearchError `json:"error"`
}

type customSearchItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Mime  string `json:"mime"`
	Image struct {
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		ThumbnailLink string `json:"thumbnailLink"`
	} `json:"image"`
}

type customSearchError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rateLimiter implements simple rate limiting
type rateLimiter struct {
	requestsPerMinute int
	requests          []time.Time
}

func newRateLimiter(rpm int) *rateLimiter {
	return &rateLimiter{
		requestsPerMinute: rpm,
		requests:          make([]time.Time, 0, rpm),
	}
}

func (rl *rateLimiter) wait() {
	now := time.Now()

	// Remove requests older than 1 minute
	cutoff := now.Add(-1 * time.Minute)
	i := 0
	for i < len(rl.requests) && rl.requests[i].Before(cutoff) {
		i++
	}
	rl.requests = rl.requests[i:]

	// If we're at the limit, wait
	if len(rl.requests) >= rl.requestsPerMinute {
		oldestRequest := rl.requests[0]
		waitDuration := oldestRequest.Add(1 * time.Minute).Sub(now)
		if waitDuration > 0 {
			time.Sleep(waitDuration)
		}
	}

	// Record this request
	rl.requests = append(rl.requests, now)
}

// NewCustomSearchClient creates a new Google Custom Search client
func NewCustomSearchClient(apiKey, engineID string) *CustomSearchClient {
	return &CustomSearchClient{
		apiKey:   apiKey,
		engineID: engineID,
		httpClient: &http.Client{
			Timeout: customSearchTimeout,
		},
		rateLimit: newRateLimiter(60),
		baseURL:   customSearchAPIURL,
	}
}

// Search performs an image search against Google Custom Search. The
// caller's query gets the negative keyword suffix appended, so callers
// supply only the positive terms.
func (c *CustomSearchClient) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	c.rateLimit.wait()

	num := opts.NumResults
	if num <= 0 || num > 10 {
		num = 3
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", opts.Query+queryNegatives)
	params.Set("searchType", "image")
	params.Set("num", fmt.Sprintf("%d", num))
	if opts.SafeSearch {
		params.Set("safe", "active")
	}

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   "customsearch",
			RetryAfter: 60,
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &SearchError{
			Provider: "customsearch",
			Code:     fmt.Sprintf("%d", resp.StatusCode),
			Message:  string(body),
		}
	}

	var csResp customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&csResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if csResp.Error != nil {
		return nil, &SearchError{
			Provider: "customsearch",
			Code:     fmt.Sprintf("%d", csResp.Error.Code),
			Message:  csResp.Error.Message,
		}
	}

	// Items arrive in ranking order; preserve it
	results := make([]SearchResult, 0, len(csResp.Items))
	for i, item := range csResp.Items {
		results = append(results, SearchResult{
			ID:           fmt.Sprintf("cse-%d", i+1),
			URL:          item.Link,
			ThumbnailURL: item.Image.ThumbnailLink,
			Width:        item.Image.Width,
			Height:       item.Image.Height,
			Description:  item.Title,
			MimeType:     item.Mime,
			Source:       "customsearch",
		})
	}

	return results, nil
}

// Download downloads an image from the given URL
func (c *CustomSearchClient) Download(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// Name returns the name of the search provider
func (c *CustomSearchClient) Name() string {
	return "customsearch"
}
