package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// MockEmbedder is a deterministic embedder for tests and local development
// without the ONNX runtime. The same text always maps to the same unit vector,
// and texts sharing words land near each other, which is enough for ranking
// assertions.
type MockEmbedder struct {
	dimensions int
	modelName  string
}

// NewMockEmbedder returns a deterministic embedder of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions, modelName: "mock-embedder"}
}

// Embed returns a normalized bag-of-words hash vector for text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty input text")
	}
	emb := make([]float32, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := hashString(word)
		emb[h%e.dimensions] += 1
		emb[(h/7)%e.dimensions] += 0.5
	}
	// Tiny deterministic noise so no two distinct texts are exactly equal.
	h := hashString(text)
	for i := range emb {
		emb[i] += float32(math.Sin(float64(h*(i+1)))) * 0.001
	}
	NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (e *MockEmbedder) Dimensions() int { return e.dimensions }

func (e *MockEmbedder) ModelName() string { return e.modelName }

func (e *MockEmbedder) Close() error { return nil }
