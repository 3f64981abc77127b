package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkText("", 800))
	assert.Empty(t, ChunkText("   \n\n  \n\n ", 800))
}

func TestChunkShortInputYieldsSingleChunk(t *testing.T) {
	chunks := ChunkText("short text", 800)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestChunkAccumulatesParagraphsUpToBound(t *testing.T) {
	p1 := strings.Repeat("a", 300)
	p2 := strings.Repeat("b", 300)
	p3 := strings.Repeat("c", 300)
	chunks := ChunkText(p1+"\n\n"+p2+"\n\n"+p3, 800)

	// p1+p2 fit together (600 + separator); p3 would exceed 800 and flushes.
	require.Len(t, chunks, 2)
	assert.Equal(t, p1+"\n\n"+p2, chunks[0])
	assert.Equal(t, p3, chunks[1])
}

func TestChunkParagraphExactlyAtBoundIsNotSplit(t *testing.T) {
	p := strings.Repeat("x", 800)
	chunks := ChunkText(p, 800)
	require.Len(t, chunks, 1)
	assert.Equal(t, p, chunks[0])
}

func TestChunkOversizedParagraphHardSplit(t *testing.T) {
	p := strings.Repeat("y", 1900)
	chunks := ChunkText(p, 800)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 800)
	assert.Len(t, chunks[1], 800)
	assert.Len(t, chunks[2], 300)
}

func TestChunkNoChunkExceedsBound(t *testing.T) {
	input := strings.Join([]string{
		strings.Repeat("a", 120),
		strings.Repeat("b", 2000),
		strings.Repeat("c", 40),
		strings.Repeat("d", 799),
	}, "\n\n")

	for _, size := range []int{100, 333, 800} {
		for i, c := range ChunkText(input, size) {
			assert.LessOrEqual(t, len(c), size, "size %d chunk %d", size, i)
		}
	}
}

func TestChunkCoveragePreservesParagraphOrder(t *testing.T) {
	paragraphs := []string{
		"First paragraph of the page.",
		"Second paragraph with a bit more text in it.",
		"",
		"Third paragraph, after an empty one that should be skipped.",
	}
	chunks := ChunkText(strings.Join(paragraphs, "\n\n"), 60)

	joined := strings.Join(chunks, "\n\n")
	var nonEmpty []string
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	assert.Equal(t, strings.Join(nonEmpty, "\n\n"), joined)
}

func TestChunkOversizedKeepsSurroundingOrder(t *testing.T) {
	input := "before\n\n" + strings.Repeat("z", 50) + "\n\nafter"
	chunks := ChunkText(input, 20)
	require.Len(t, chunks, 5)
	assert.Equal(t, "before", chunks[0])
	assert.Equal(t, "after", chunks[4])
	assert.Equal(t, strings.Repeat("z", 50), chunks[1]+chunks[2]+chunks[3])
}

func TestChunkDeterministic(t *testing.T) {
	input := strings.Repeat("lorem ipsum dolor sit amet\n\n", 40)
	assert.Equal(t, ChunkText(input, 100), ChunkText(input, 100))
}
