// Package media stores audio and image artifacts as files in per-kind
// folders, referenced from vocabulary entries by bare filename. Saving
// an existing name is a no-op so repeated backfill passes stay
// idempotent.
package media
