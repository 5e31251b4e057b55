// Package audio synthesizes pronunciation audio through remote TTS
// services. Two voice profiles exist: one tuned for isolated words
// (optionally forced onto an explicit IPA transcription) and one tuned
// for full sentences. Providers implement a common interface and can be
// chained with a fallback.
package audio
