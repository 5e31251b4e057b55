package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Version is the ankiforge release version.
var Version = "0.3.0"

// GenerateEntryID creates a unique ID for a vocabulary entry.
// Format: epochMillis_md5(word)[:8]
func GenerateEntryID(word string) string {
	epochMillis := time.Now().UnixNano() / 1000000

	hash := md5.Sum([]byte(word))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s", epochMillis, hashStr)
}

// MediaBasename derives a media filename stem from a word: sanitized,
// lowercased, truncated, plus a short uniqueness suffix so regenerating
// media for the same word never overwrites an earlier artifact.
func MediaBasename(word string) string {
	stem := strings.ToLower(SanitizeFilename(word))
	if len(stem) > 15 {
		stem = stem[:15]
	}

	h := md5.New()
	h.Write([]byte(word))
	fmt.Fprintf(h, "%d", time.Now().UnixNano())
	suffix := hex.EncodeToString(h.Sum(nil))[:4]

	return fmt.Sprintf("%s_%s", stem, suffix)
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := ""
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			result += string(r)
		} else {
			result += "_"
		}
	}
	return result
}

// isAlphaNumeric checks if a rune is alphanumeric
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
