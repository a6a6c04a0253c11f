// Package splitter cuts raw document text into overlapping, size-bounded
// segments suitable for embedding.
package splitter

import "strings"

const (
	// DefaultChunkSize is the proposed window length in bytes.
	DefaultChunkSize = 1000
	// DefaultOverlap is how far consecutive windows overlap.
	DefaultOverlap = 200

	// maxLookback bounds the backward search for a natural break so a
	// large overlap cannot drag a boundary arbitrarily far left.
	maxLookback = 100
)

// Split walks text in a single forward pass and emits trimmed chunks of at
// most chunkSize bytes (plus the delimiter of an adjusted boundary). When a
// window would end mid-text, the boundary is pulled back to the nearest
// natural break within the lookback window, preferring a newline, then a
// sentence end, then a plain space. Consecutive chunks overlap by up to
// overlap bytes. The function is pure: same input, same output.
//
// Requires chunkSize > overlap >= 0; empty input yields no chunks.
func Split(text string, chunkSize, overlap int) []string {
	if text == "" || chunkSize <= 0 || overlap < 0 || chunkSize <= overlap {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + chunkSize
		if end < len(text) {
			end = adjustBoundary(text, start, end, chunkSize, overlap)
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start || next >= end {
			// Overlap swallowed the whole adjusted span; jump to the
			// boundary so the walk always makes progress.
			next = end
		}
		start = next
	}

	return chunks
}

// adjustBoundary searches backward from the proposed end for the best
// natural break, inclusive of the delimiter. It returns the raw end when no
// break falls inside the lookback window.
func adjustBoundary(text string, start, end, chunkSize, overlap int) int {
	lookback := overlap
	if lookback > maxLookback {
		lookback = maxLookback
	}
	floor := start + chunkSize - lookback

	if idx := strings.LastIndexByte(text[:end+1], '\n'); idx > floor {
		return idx + 1
	}
	// A sentence break may start exactly at the proposed end, so its
	// two-byte delimiter needs one extra byte of search window.
	sentenceWindow := end + 2
	if sentenceWindow > len(text) {
		sentenceWindow = len(text)
	}
	if idx := strings.LastIndex(text[:sentenceWindow], ". "); idx > floor {
		return idx + 2
	}
	if idx := strings.LastIndexByte(text[:end+1], ' '); idx > floor {
		return idx + 1
	}
	return end
}
