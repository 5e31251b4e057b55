// Package store persists vocabulary entries in a SQLite table. Rows are
// decoded into named-field records at this boundary; callers never deal
// with positional columns. Writes are appends or targeted single-column
// updates, matching how the table is shared with manual edits.
package store
