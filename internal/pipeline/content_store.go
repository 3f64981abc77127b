package pipeline

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/core/scraper"
	"github.com/samir1maity/fixy/internal/models"
)

// ContentStore persists crawled pages: a page row, its chunks in source order,
// and optionally a raw-HTML snapshot in object storage. It is the crawler's
// PageSink.
type ContentStore struct {
	db           core.DbClient
	objects      core.ObjectClient // nil disables snapshots
	bucket       string
	maxChunkSize int
	log          *zap.Logger
}

var _ scraper.PageSink = (*ContentStore)(nil)

func NewContentStore(db core.DbClient, objects core.ObjectClient, bucket string, maxChunkSize int, log *zap.Logger) *ContentStore {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}
	return &ContentStore{db: db, objects: objects, bucket: bucket, maxChunkSize: maxChunkSize, log: log}
}

// StorePage writes the page and its chunks. Chunk indices are assigned
// sequentially from 0 in source order; that order is meaningful downstream.
// Snapshot archival is best-effort and never fails the store.
func (s *ContentStore) StorePage(ctx context.Context, p *scraper.CrawledPage) error {
	page := &models.Page{
		ID:        uuid.NewString(),
		WebsiteID: p.WebsiteID,
		URL:       p.URL,
		Title:     p.Title,
	}
	if err := s.db.CreatePage(ctx, page); err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	texts := ChunkText(p.Content, s.maxChunkSize)
	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, models.Chunk{
			ID:         uuid.NewString(),
			PageID:     page.ID,
			ChunkIndex: i,
			Text:       text,
		})
	}
	if err := s.db.InsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}

	if s.objects != nil && s.bucket != "" {
		key := path.Join("websites", p.WebsiteID, "pages", page.ID+".html")
		if _, err := s.objects.UploadFile(ctx, s.bucket, key, []byte(p.RawHTML), "text/html"); err != nil {
			s.log.Warn("page snapshot upload failed", zap.String("url", p.URL), zap.Error(err))
		}
	}

	s.log.Debug("page stored",
		zap.String("url", p.URL),
		zap.String("page_id", page.ID),
		zap.Int("chunks", len(chunks)))
	return nil
}
