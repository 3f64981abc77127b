package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/samir1maity/fixy/internal/config"
	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Websites

func (c *DatabaseClient) CreateWebsite(ctx context.Context, w *models.Website) error {
	if w == nil {
		return errors.New("nil website")
	}
	const q = `
		INSERT INTO websites
			(id, customer_id, domain, status, status_message, api_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		w.ID, w.CustomerID, w.Domain, w.Status, w.StatusMessage, w.APISecret)
	return err
}

const websiteColumns = `
	id, customer_id, domain, status, status_message, api_secret,
	last_crawled_at, created_at, updated_at
`

func (c *DatabaseClient) scanWebsite(row *sql.Row) (*models.Website, error) {
	var w models.Website
	err := row.Scan(
		&w.ID, &w.CustomerID, &w.Domain, &w.Status, &w.StatusMessage, &w.APISecret,
		&w.LastCrawledAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *DatabaseClient) GetWebsiteByID(ctx context.Context, id string) (*models.Website, error) {
	q := `SELECT ` + websiteColumns + ` FROM websites WHERE id = $1`
	return c.scanWebsite(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) GetWebsiteByDomain(ctx context.Context, customerID, domain string) (*models.Website, error) {
	q := `SELECT ` + websiteColumns + ` FROM websites WHERE customer_id = $1 AND domain = $2`
	return c.scanWebsite(c.db.QueryRowContext(ctx, q, customerID, domain))
}

func (c *DatabaseClient) GetWebsiteBySecret(ctx context.Context, secret string) (*models.Website, error) {
	q := `SELECT ` + websiteColumns + ` FROM websites WHERE api_secret = $1`
	return c.scanWebsite(c.db.QueryRowContext(ctx, q, secret))
}

func (c *DatabaseClient) ListWebsitesByCustomer(ctx context.Context, customerID string) ([]models.Website, error) {
	q := `SELECT ` + websiteColumns + ` FROM websites WHERE customer_id = $1 ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Website
	for rows.Next() {
		var w models.Website
		if err := rows.Scan(
			&w.ID, &w.CustomerID, &w.Domain, &w.Status, &w.StatusMessage, &w.APISecret,
			&w.LastCrawledAt, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateWebsiteStatus(ctx context.Context, id string, status models.WebsiteStatus, message string) error {
	const q = `
		UPDATE websites
		SET status = $2, status_message = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status, message)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("website not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) RecordWebsiteCrawl(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE websites
		SET last_crawled_at = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("website not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) UpdateWebsiteSecret(ctx context.Context, id, secret string) error {
	const q = `
		UPDATE websites
		SET api_secret = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, secret)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("website not found: %s", id)
	}
	return nil
}

// Pages and chunks

func (c *DatabaseClient) CreatePage(ctx context.Context, page *models.Page) error {
	if page == nil {
		return errors.New("nil page")
	}
	const q = `
		INSERT INTO pages (id, website_id, url, title, created_at)
		VALUES ($1, $2, $3, $4, now())
	`
	_, err := c.db.ExecContext(ctx, q, page.ID, page.WebsiteID, page.URL, page.Title)
	return err
}

func (c *DatabaseClient) CountPagesByWebsite(ctx context.Context, websiteID string) (int, error) {
	const q = `SELECT count(*) FROM pages WHERE website_id = $1`
	var n int
	if err := c.db.QueryRowContext(ctx, q, websiteID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertChunks inserts a page's chunks in a single transaction.
func (c *DatabaseClient) InsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunks (id, page_id, chunk_index, text, created_at)
		VALUES ($1, $2, $3, $4, now())
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.PageID, ch.ChunkIndex, ch.Text); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListUnembeddedChunks returns up to limit of the website's chunks that have no
// embedding row under modelName yet, in stable insertion order.
func (c *DatabaseClient) ListUnembeddedChunks(ctx context.Context, websiteID, modelName string, limit int) ([]models.Chunk, error) {
	const q = `
		SELECT ch.id, ch.page_id, ch.chunk_index, ch.text, ch.created_at
		FROM chunks ch
		JOIN pages p ON p.id = ch.page_id
		WHERE p.website_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM embeddings e
			WHERE e.chunk_id = ch.id AND e.model_name = $2
		  )
		ORDER BY ch.created_at ASC, ch.id ASC
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, websiteID, modelName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var ch models.Chunk
		if err := rows.Scan(&ch.ID, &ch.PageID, &ch.ChunkIndex, &ch.Text, &ch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// InsertEmbedding stores one chunk's vector. A row already present for the same
// (chunk, model) pair is left untouched, which makes re-runs after a crash safe.
func (c *DatabaseClient) InsertEmbedding(ctx context.Context, emb *models.Embedding) error {
	if emb == nil {
		return errors.New("nil embedding")
	}
	const q = `
		INSERT INTO embeddings (id, chunk_id, model_name, dimensions, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (chunk_id, model_name) DO NOTHING
	`
	vec := pgvector.NewVector(emb.Vector)
	_, err := c.db.ExecContext(ctx, q, emb.ID, emb.ChunkID, emb.ModelName, emb.Dimensions, vec)
	return err
}

// SearchWebsiteChunks finds the k chunks nearest the query vector within one
// website's corpus, using cosine distance. Ties break on chunk id so results
// are deterministic.
func (c *DatabaseClient) SearchWebsiteChunks(ctx context.Context, websiteID string, query []float32, modelName string, k int) ([]models.ScoredChunk, error) {
	const q = `
		SELECT ch.id, ch.text, p.url, p.title, e.embedding <=> $3 AS distance
		FROM embeddings e
		JOIN chunks ch ON ch.id = e.chunk_id
		JOIN pages p ON p.id = ch.page_id
		WHERE p.website_id = $1 AND e.model_name = $2
		ORDER BY e.embedding <=> $3 ASC, ch.id ASC
		LIMIT $4
	`
	vec := pgvector.NewVector(query)
	rows, err := c.db.QueryContext(ctx, q, websiteID, modelName, vec, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoredChunk
	for rows.Next() {
		var sc models.ScoredChunk
		if err := rows.Scan(&sc.ChunkID, &sc.Text, &sc.URL, &sc.Title, &sc.Distance); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Chat interactions

func (c *DatabaseClient) CreateChatInteraction(ctx context.Context, ci *models.ChatInteraction) error {
	if ci == nil {
		return errors.New("nil chat interaction")
	}
	chunkIDs, err := json.Marshal(ci.ChunkIDs)
	if err != nil {
		return fmt.Errorf("encode chunk ids: %w", err)
	}
	const q = `
		INSERT INTO chat_interactions (id, website_id, session_id, query, response, chunk_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`
	_, err = c.db.ExecContext(ctx, q, ci.ID, ci.WebsiteID, ci.SessionID, ci.Query, ci.Response, chunkIDs)
	return err
}

func (c *DatabaseClient) ListChatBySession(ctx context.Context, sessionID string) ([]models.ChatInteraction, error) {
	const q = `
		SELECT id, website_id, session_id, query, response, chunk_ids, created_at
		FROM chat_interactions
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatInteraction
	for rows.Next() {
		var (
			ci  models.ChatInteraction
			raw []byte
		)
		if err := rows.Scan(&ci.ID, &ci.WebsiteID, &ci.SessionID, &ci.Query, &ci.Response, &raw, &ci.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &ci.ChunkIDs); err != nil {
				return nil, fmt.Errorf("decode chunk ids: %w", err)
			}
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CountChatInteractions(ctx context.Context, websiteIDs []string, since *time.Time) (int, error) {
	if len(websiteIDs) == 0 {
		return 0, nil
	}
	q := `SELECT count(*) FROM chat_interactions WHERE website_id = ANY($1)`
	args := []any{websiteIDs}
	if since != nil {
		q += ` AND created_at >= $2`
		args = append(args, *since)
	}
	var n int
	if err := c.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
