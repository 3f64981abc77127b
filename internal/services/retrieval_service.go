package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

const (
	// DefaultTopK is the number of nearest chunks retrieved per query.
	DefaultTopK = 5
	// SimilarityThreshold is the 0-100 score below which a passage is
	// considered weak context.
	SimilarityThreshold = 60
)

var ErrEmptyQuery = errors.New("empty query")

// RetrievalService answers nearest-neighbor queries against one website's
// embedded corpus. The query is embedded with the same model that produced the
// corpus vectors; mixing spaces would make distances meaningless.
type RetrievalService struct {
	db       core.DbClient
	embedder core.Embedder
}

func NewRetrievalService(db core.DbClient, embedder core.Embedder) *RetrievalService {
	return &RetrievalService{db: db, embedder: embedder}
}

// Retrieve returns the k passages nearest the query within the website's
// corpus, ordered most similar first. An empty corpus yields an empty slice,
// not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, websiteID, query string, k int) ([]models.Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.db.SearchWebsiteChunks(ctx, websiteID, vec, s.embedder.ModelName(), k)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]models.Passage, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.Passage{
			ChunkID:    h.ChunkID,
			Text:       h.Text,
			URL:        h.URL,
			Title:      h.Title,
			Similarity: similarityScore(h.Distance),
		})
	}
	return out, nil
}

// FilterPassages keeps passages at or above the threshold. When none qualify,
// the unfiltered set is returned so the caller still has the best-available
// context instead of nothing.
func FilterPassages(passages []models.Passage, threshold int) []models.Passage {
	var strong []models.Passage
	for _, p := range passages {
		if p.Similarity >= threshold {
			strong = append(strong, p)
		}
	}
	if len(strong) == 0 {
		return passages
	}
	return strong
}

// similarityScore maps a cosine distance in [0, 2] to a 0-100 score, clamped.
func similarityScore(distance float64) int {
	score := int(math.Round((1 - distance) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
