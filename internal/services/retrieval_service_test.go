package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samir1maity/fixy/internal/core/embedding"
	"github.com/samir1maity/fixy/internal/core/memdb"
	"github.com/samir1maity/fixy/internal/models"
)

// seedCorpus writes a website with one page and embeds the given texts.
func seedCorpus(t *testing.T, db *memdb.MemDB, emb *embedding.MockEmbedder, websiteID string, texts []string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.CreateWebsite(ctx, &models.Website{
		ID: websiteID, CustomerID: "cust", Domain: websiteID + ".test",
		Status: models.StatusCompleted, APISecret: websiteID + "-secret",
	}))
	pageID := websiteID + "-page"
	require.NoError(t, db.CreatePage(ctx, &models.Page{
		ID: pageID, WebsiteID: websiteID,
		URL: "https://" + websiteID + ".test/docs", Title: "Docs",
	}))

	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, models.Chunk{
			ID: fmt.Sprintf("%s-chunk-%d", websiteID, i), PageID: pageID, ChunkIndex: i, Text: text,
		})
	}
	require.NoError(t, db.InsertChunks(ctx, chunks))

	for _, c := range chunks {
		vec, err := emb.Embed(ctx, c.Text)
		require.NoError(t, err)
		require.NoError(t, db.InsertEmbedding(ctx, &models.Embedding{
			ID: uuid.NewString(), ChunkID: c.ID, ModelName: emb.ModelName(),
			Dimensions: emb.Dimensions(), Vector: vec,
		}))
	}
}

func TestRetrieveRanksMatchingTextFirst(t *testing.T) {
	db := memdb.New()
	emb := embedding.NewMockEmbedder(64)
	seedCorpus(t, db, emb, "w1", []string{
		"our refund policy allows returns within thirty days of purchase",
		"the engineering blog covers distributed systems and database internals",
		"office hours are monday through friday nine to five",
	})
	svc := NewRetrievalService(db, emb)

	passages, err := svc.Retrieve(context.Background(), "w1", "refund policy returns purchase", 3)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Contains(t, passages[0].Text, "refund policy")
	for i := 1; i < len(passages); i++ {
		assert.GreaterOrEqual(t, passages[i-1].Similarity, passages[i].Similarity, "ordered most similar first")
	}
	for _, p := range passages {
		assert.Equal(t, "https://w1.test/docs", p.URL)
		assert.Equal(t, "Docs", p.Title)
		assert.GreaterOrEqual(t, p.Similarity, 0)
		assert.LessOrEqual(t, p.Similarity, 100)
	}
}

func TestRetrieveIsScopedToWebsite(t *testing.T) {
	db := memdb.New()
	emb := embedding.NewMockEmbedder(64)
	seedCorpus(t, db, emb, "w1", []string{"alpha website content about pricing plans"})
	seedCorpus(t, db, emb, "w2", []string{"beta website content about pricing plans"})
	svc := NewRetrievalService(db, emb)

	passages, err := svc.Retrieve(context.Background(), "w1", "pricing plans", 10)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Contains(t, passages[0].Text, "alpha")
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	db := memdb.New()
	emb := embedding.NewMockEmbedder(64)
	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w1", CustomerID: "cust", Domain: "w1.test", Status: models.StatusCompleted, APISecret: "s",
	}))
	svc := NewRetrievalService(db, emb)

	passages, err := svc.Retrieve(context.Background(), "w1", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestRetrieveRejectsEmptyQuery(t *testing.T) {
	svc := NewRetrievalService(memdb.New(), embedding.NewMockEmbedder(64))

	_, err := svc.Retrieve(context.Background(), "w1", "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	db := memdb.New()
	emb := embedding.NewMockEmbedder(64)
	seedCorpus(t, db, emb, "w1", []string{
		"first document about shipping",
		"second document about billing",
		"third document about support",
	})
	svc := NewRetrievalService(db, emb)

	a, err := svc.Retrieve(context.Background(), "w1", "billing question", 3)
	require.NoError(t, err)
	b, err := svc.Retrieve(context.Background(), "w1", "billing question", 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFilterPassages(t *testing.T) {
	passages := []models.Passage{
		{ChunkID: "a", Similarity: 90},
		{ChunkID: "b", Similarity: 61},
		{ChunkID: "c", Similarity: 40},
	}

	strong := FilterPassages(passages, 60)
	require.Len(t, strong, 2)
	assert.Equal(t, "a", strong[0].ChunkID)
	assert.Equal(t, "b", strong[1].ChunkID)

	// Nothing clears the bar: fall back to the raw set.
	weak := []models.Passage{{ChunkID: "x", Similarity: 10}, {ChunkID: "y", Similarity: 5}}
	assert.Equal(t, weak, FilterPassages(weak, 60))

	assert.Empty(t, FilterPassages(nil, 60))
}

func TestSimilarityScoreClamps(t *testing.T) {
	assert.Equal(t, 100, similarityScore(0))
	assert.Equal(t, 50, similarityScore(0.5))
	assert.Equal(t, 0, similarityScore(1))
	assert.Equal(t, 0, similarityScore(1.8), "opposite vectors clamp to zero")
	assert.Equal(t, 100, similarityScore(-0.01), "float fuzz clamps to one hundred")
}
