package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordTokenizerShape(t *testing.T) {
	tok := &WordTokenizer{}
	ids, mask, types := tok.Tokenize("hello world", 8)
	assert.Len(t, ids, 8)
	assert.Len(t, mask, 8)
	assert.Len(t, types, 8)
	assert.Equal(t, int64(101), ids[0])
	// CLS + 2 words + SEP attended.
	var attended int64
	for _, m := range mask {
		attended += m
	}
	assert.Equal(t, int64(4), attended)
}

func TestWordTokenizerTruncatesLongInput(t *testing.T) {
	tok := &WordTokenizer{}
	long := ""
	for i := 0; i < 100; i++ {
		long += "word "
	}
	ids, _, _ := tok.Tokenize(long, 16)
	assert.Len(t, ids, 16)
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	a, err := e.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestMockEmbedderNormalized(t *testing.T) {
	e := NewMockEmbedder(32)
	v, err := e.Embed(context.Background(), "normalize me please")
	require.NoError(t, err)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedderRejectsEmptyInput(t *testing.T) {
	e := NewMockEmbedder(32)
	_, err := e.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestMockEmbedderSimilarTextsAreCloser(t *testing.T) {
	e := NewMockEmbedder(128)
	ctx := context.Background()
	base, _ := e.Embed(ctx, "static site generators build pages ahead of time")
	near, _ := e.Embed(ctx, "static site generators prebuild pages")
	far, _ := e.Embed(ctx, "grilled cheese sandwich recipe with tomato soup")

	assert.Greater(t, dot(base, near), dot(base, far))
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestNormalizeL2ZeroVectorUntouched(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeL2(v)
	assert.Equal(t, []float32{0, 0, 0}, v)
}
