package entry

import (
	"strings"
	"time"
)

// StudyMode selects the processing profile for a submission.
type StudyMode string

const (
	// ModePronunciation creates pronunciation-only cards: IPA as the
	// definition, a stress/linking tip as the example, no image.
	ModePronunciation StudyMode = "pronunciation"

	// ModeGeneralVocab creates full vocabulary cards with definition,
	// example sentence and an illustration.
	ModeGeneralVocab StudyMode = "general_vocab"
)

// ParseStudyMode maps a free-form submission value to a StudyMode.
// Unknown values default to general vocabulary.
func ParseStudyMode(s string) StudyMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pronunciation", "pronunciation-only", "solo pronunciación":
		return ModePronunciation
	default:
		return ModeGeneralVocab
	}
}

// Import status values for the Status field.
const (
	StatusPending  = "pending"
	StatusExported = "exported"
)

// TagPolysemy marks an entry that duplicates an existing word text with a
// judge-approved distinct sense.
const TagPolysemy = "polysemy"

// Entry is one row of the vocabulary table. Media fields hold bare
// filenames; the Anki wrapping markup is applied only at export time.
// An empty media field means "not yet generated", never "failed for good".
type Entry struct {
	ID           string
	CreatedAt    time.Time
	Word         string
	Definition   string
	Example      string // example sentence, may carry a {{c1::...}} cloze
	ExamplePlain string // example without cloze markup, used for audio
	Context      string // the context the learner submitted the word in
	PartOfSpeech string
	Status       string
	Tags         string // space separated: mode tag plus optional markers
	AudioWord    string // media filename or ""
	Image        string // media filename or ""
	AudioSent    string // media filename or ""
}

// Mode derives the study mode from the entry's tags.
func (e *Entry) Mode() StudyMode {
	for _, tag := range strings.Fields(e.Tags) {
		if tag == string(ModePronunciation) {
			return ModePronunciation
		}
	}
	return ModeGeneralVocab
}

// IsPolysemy reports whether the entry carries the polysemy marker tag.
func (e *Entry) IsPolysemy() bool {
	for _, tag := range strings.Fields(e.Tags) {
		if tag == TagPolysemy {
			return true
		}
	}
	return false
}

// AddTag appends a tag unless it is already present.
func (e *Entry) AddTag(tag string) {
	for _, t := range strings.Fields(e.Tags) {
		if t == tag {
			return
		}
	}
	if e.Tags == "" {
		e.Tags = tag
	} else {
		e.Tags += " " + tag
	}
}

// IsComplete reports whether the entry needs no further media work.
// Pronunciation-mode entries are complete with word and sentence audio;
// every other mode also requires an image.
func (e *Entry) IsComplete() bool {
	hasAudio := e.AudioWord != "" && e.AudioSent != ""
	if e.Mode() == ModePronunciation {
		return hasAudio
	}
	return hasAudio && e.Image != ""
}

// NeedsRescue reports whether the entry has a word but lost its text
// content (empty definition), meaning generation must be rerun.
func (e *Entry) NeedsRescue() bool {
	return e.Word != "" && strings.TrimSpace(e.Definition) == ""
}

// SameWord compares two word texts under the table's case-insensitive
// uniqueness rule.
func SameWord(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
