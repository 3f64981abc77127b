// Package pipeline contains the content-processing stages that run between a
// website's registration and its corpus becoming queryable: chunking, page
// persistence, batched embedding and the job orchestrator driving them.
package pipeline

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the production chunk bound in characters.
const DefaultChunkSize = 800

var paragraphSplitRE = regexp.MustCompile(`\n\s*\n`)

// ChunkText splits content into bounded-size chunks along blank-line paragraph
// boundaries. Paragraphs accumulate into a buffer that is flushed whenever the
// next paragraph would push it past maxChunkSize; a single paragraph larger
// than maxChunkSize is hard-split into fixed-length slices with no word-boundary
// awareness. Output preserves source order and is deterministic; chunk indices
// are the slice positions.
func ChunkText(content string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}

	var chunks []string
	var current string

	for _, paragraph := range paragraphSplitRE.Split(content, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		if len(current)+len(paragraph) > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(current))
			current = ""
		}

		if len(paragraph) > maxChunkSize {
			// Oversized atomic paragraph: bypass the buffer entirely.
			for _, sub := range hardSplit(paragraph, maxChunkSize) {
				if s := strings.TrimSpace(sub); s != "" {
					chunks = append(chunks, s)
				}
			}
			continue
		}

		if current != "" {
			current += "\n\n"
		}
		current += paragraph
	}

	if s := strings.TrimSpace(current); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// hardSplit cuts s into consecutive slices of at most size runes.
func hardSplit(s string, size int) []string {
	runes := []rune(s)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
