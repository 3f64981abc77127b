package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

const (
	// DefaultBatchSize is how many unembedded chunks one batch pulls.
	DefaultBatchSize = 20
	// minEmbedLen: chunks shorter than this are degenerate and never embedded.
	minEmbedLen = 10
	// maxBatches caps the processing loop against pathological data.
	maxBatches = 100
)

// Processor embeds a website's unembedded chunks in fixed-size batches. One
// bad chunk never stalls the corpus: per-item errors are logged and skipped.
type Processor struct {
	db        core.DbClient
	embedder  core.Embedder
	log       *zap.Logger
	batchSize int
	pacing    time.Duration
}

func NewProcessor(db core.DbClient, embedder core.Embedder, log *zap.Logger, batchSize int, pacing time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Processor{db: db, embedder: embedder, log: log, batchSize: batchSize, pacing: pacing}
}

// ProcessBatch pulls up to batchSize chunks of the website lacking an
// embedding for the active model, embeds and persists them, and returns how
// many were actually embedded. 0 signals corpus exhaustion: degenerate chunks
// are skipped without being persisted, so once only those remain the batch
// embeds nothing and the loop stops.
func (p *Processor) ProcessBatch(ctx context.Context, websiteID string) (int, error) {
	chunks, err := p.db.ListUnembeddedChunks(ctx, websiteID, p.embedder.ModelName(), p.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range chunks {
		chunk := &chunks[i]
		if len(strings.TrimSpace(chunk.Text)) < minEmbedLen {
			continue
		}

		vec, err := p.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			p.log.Warn("chunk embed failed, skipping",
				zap.String("chunk_id", chunk.ID), zap.Error(err))
			continue
		}

		emb := &models.Embedding{
			ID:         uuid.NewString(),
			ChunkID:    chunk.ID,
			ModelName:  p.embedder.ModelName(),
			Dimensions: p.embedder.Dimensions(),
			Vector:     vec,
		}
		if err := p.db.InsertEmbedding(ctx, emb); err != nil {
			p.log.Warn("embedding store failed, skipping",
				zap.String("chunk_id", chunk.ID), zap.Error(err))
			continue
		}
		processed++
	}
	return processed, nil
}

// Run calls ProcessBatch until the corpus is exhausted or the safety cap is
// hit, pacing between batches that did work. It returns the total embedded.
func (p *Processor) Run(ctx context.Context, websiteID string) (int, error) {
	total := 0
	for batch := 0; batch < maxBatches; batch++ {
		n, err := p.ProcessBatch(ctx, websiteID)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n

		if p.pacing > 0 {
			select {
			case <-time.After(p.pacing):
			case <-ctx.Done():
				return total, ctx.Err()
			}
		}
	}

	p.log.Info("embedding run finished",
		zap.String("website_id", websiteID),
		zap.Int("chunks_embedded", total))
	return total, nil
}
