// Package backfill repairs incomplete vocabulary entries in a
// time-boxed batch pass. Each run scans the whole table, skips
// complete rows cheaply, regenerates lost text content, and fills
// only the media cells that are still empty. Runs are idempotent;
// repeated passes converge instead of duplicating work.
package backfill
