// Package entry defines the vocabulary entry record stored for every
// learned word or phrase, the study modes that select a processing
// profile, and the cloze marker helpers used when preparing example
// sentences for spaced-repetition review.
package entry
