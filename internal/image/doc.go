// Package image finds illustration candidates for vocabulary entries.
// The primary path searches Google Custom Search for real photos and
// runs each candidate through an AI quality gate before accepting it;
// DALL-E generation is available as an alternative source. Candidates
// are tried in ranking order and the first one that passes wins.
package image
