package entry

import (
	"fmt"
	"regexp"
	"strings"
)

var clozeRe = regexp.MustCompile(`\{\{c\d+::(.*?)\}\}`)

// EnsureClozeMarker guarantees that the example contains a {{c1::...}}
// cloze wrapping the target word. If the generator already emitted one,
// the example passes through untouched. Otherwise the first
// case-insensitive whole-word occurrence of the target is wrapped; when
// the word does not occur at all, a synthetic note is prefixed so the
// card still has a valid cloze.
func EnsureClozeMarker(example, word string) string {
	if example == "" || word == "" {
		return example
	}
	if strings.Contains(example, "{{c1::") {
		return example
	}

	re, err := wordPattern(word)
	if err == nil && re.MatchString(example) {
		return re.ReplaceAllString(example, "{{c1::$1}}")
	}

	return fmt.Sprintf("Note on {{c1::%s}}: %s", word, example)
}

// StripCloze removes cloze markup, leaving the plain sentence. Used to
// prepare example text for speech synthesis.
func StripCloze(example string) string {
	return clozeRe.ReplaceAllString(example, "$1")
}

// wordPattern builds a case-insensitive whole-word matcher for the
// target. Word boundaries only apply when the target actually starts and
// ends with word characters, so phrases like "put up with" still match.
func wordPattern(word string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(word)
	return regexp.Compile(`(?i)\b(` + escaped + `)\b`)
}
