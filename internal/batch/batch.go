// Package batch reads submission files so many words can be queued in
// one CLI invocation.
package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/ankiforge/internal/entry"
	"codeberg.org/snonux/ankiforge/internal/pipeline"
)

// ReadSubmissionFile reads word submissions from a file, one per line.
// Supported formats:
//   - word only:                 "serendipity"
//   - with context:              "serendipity | found it by pure serendipity"
//   - with context and mode:     "serendipity | ... | pronunciation"
//
// Blank lines and lines starting with '#' are ignored. An empty field
// between pipes keeps its default (empty context, general vocabulary).
func ReadSubmissionFile(filename string) ([]pipeline.Submission, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission file: %w", err)
	}

	var subs []pipeline.Submission
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sub := pipeline.Submission{Mode: entry.ModeGeneralVocab}
		parts := strings.SplitN(line, "|", 3)
		sub.Word = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			sub.Context = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			sub.Mode = entry.ParseStudyMode(parts[2])
		}

		if sub.Word == "" {
			continue
		}
		subs = append(subs, sub)
	}

	return subs, nil
}
