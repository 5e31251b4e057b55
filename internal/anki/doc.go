// Package anki exports pending vocabulary entries as Anki decks,
// either a CSV for manual import or a complete .apkg package. Media
// references live as bare filenames in the table; the Anki markup
// ([sound:...] and <img src="...">) is applied here and nowhere else.
package anki
