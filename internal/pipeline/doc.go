// Package pipeline orchestrates the processing of a single word
// submission: duplicate judgement, AI enrichment, audio synthesis,
// validated image selection, and finally the append to the vocabulary
// table. Text content is all-or-nothing; media steps fail soft and
// leave their field empty for the backfill pass to retry.
package pipeline
