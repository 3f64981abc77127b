package core

import (
	"context"
	"time"

	"github.com/samir1maity/fixy/internal/models"
)

// DbClient defines all persistence operations the pipeline and services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateWebsite(ctx context.Context, w *models.Website) error
	GetWebsiteByID(ctx context.Context, id string) (*models.Website, error)
	GetWebsiteByDomain(ctx context.Context, customerID, domain string) (*models.Website, error)
	GetWebsiteBySecret(ctx context.Context, secret string) (*models.Website, error)
	ListWebsitesByCustomer(ctx context.Context, customerID string) ([]models.Website, error)
	UpdateWebsiteStatus(ctx context.Context, id string, status models.WebsiteStatus, message string) error
	RecordWebsiteCrawl(ctx context.Context, id string, at time.Time) error
	UpdateWebsiteSecret(ctx context.Context, id, secret string) error

	CreatePage(ctx context.Context, page *models.Page) error
	CountPagesByWebsite(ctx context.Context, websiteID string) (int, error)
	InsertChunks(ctx context.Context, chunks []models.Chunk) error
	ListUnembeddedChunks(ctx context.Context, websiteID, modelName string, limit int) ([]models.Chunk, error)
	InsertEmbedding(ctx context.Context, emb *models.Embedding) error

	// SearchWebsiteChunks returns the k nearest chunks to the query vector
	// among the website's chunks embedded with modelName, ordered by distance
	// then chunk id.
	SearchWebsiteChunks(ctx context.Context, websiteID string, query []float32, modelName string, k int) ([]models.ScoredChunk, error)

	CreateChatInteraction(ctx context.Context, ci *models.ChatInteraction) error
	ListChatBySession(ctx context.Context, sessionID string) ([]models.ChatInteraction, error)
	CountChatInteractions(ctx context.Context, websiteIDs []string, since *time.Time) (int, error)

	Close() error
}

// Embedder produces fixed-dimension vector embeddings for text. The embedding
// space is tied to ModelName; corpus and query vectors must come from the same
// model for retrieval to mean anything.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Close() error
}

// LLMProvider turns retrieved passages plus a question into a natural-language
// answer. The pipeline itself never depends on it.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage, used for
// best-effort raw-HTML page snapshots.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
