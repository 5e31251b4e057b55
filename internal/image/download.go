package image

import (
	"context"
	"fmt"
	"io"
)

// maxImageBytes caps candidate downloads. Photos bigger than this are
// never worth a flashcard slot.
const maxImageBytes = 10 * 1024 * 1024

// fetchBytes downloads a candidate image into memory, enforcing the
// size cap so a mislabelled URL cannot balloon the process.
func fetchBytes(ctx context.Context, searcher ImageSearcher, imageURL string) ([]byte, error) {
	reader, err := searcher.Download(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image response")
	}

	return data, nil
}
