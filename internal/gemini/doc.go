// Package gemini wraps the Gemini API for the three model roles the
// pipeline needs: the analyst that enriches a submitted word into card
// content, the judge that decides whether a resubmitted word carries a
// new sense, and the vision validator that approves or rejects image
// candidates. All calls go through a shared circuit breaker.
package gemini
