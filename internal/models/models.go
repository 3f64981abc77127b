package models

import (
	"time"
)

// User represents an authenticated dashboard user (the "customer" owning websites).
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Website is one registered crawl target. (customer_id, domain) is unique;
// its Status is only ever mutated through the orchestrator's transitions.
type Website struct {
	ID            string        `db:"id" json:"id"`
	CustomerID    string        `db:"customer_id" json:"customer_id"`
	Domain        string        `db:"domain" json:"domain"`
	Status        WebsiteStatus `db:"status" json:"status"`
	StatusMessage string        `db:"status_message" json:"status_message,omitempty"`
	APISecret     string        `db:"api_secret" json:"-"`
	LastCrawledAt *time.Time    `db:"last_crawled_at" json:"last_crawled_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Page is one successfully crawled URL. Immutable once stored; cascade-deleted
// with its website.
type Page struct {
	ID        string    `db:"id" json:"id"`
	WebsiteID string    `db:"website_id" json:"website_id"`
	URL       string    `db:"url" json:"url"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Chunk is one bounded-size fragment of a page's extracted text. ChunkIndex is
// the stable 0-based position within the page.
type Chunk struct {
	ID         string    `db:"id" json:"id"`
	PageID     string    `db:"page_id" json:"page_id"`
	ChunkIndex int       `db:"chunk_index" json:"chunk_index"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Embedding is the vector representation of one chunk under one model. At most
// one row exists per (chunk, model).
type Embedding struct {
	ID         string    `db:"id" json:"id"`
	ChunkID    string    `db:"chunk_id" json:"chunk_id"`
	ModelName  string    `db:"model_name" json:"model_name"`
	Dimensions int       `db:"dimensions" json:"dimensions"`
	Vector     []float32 `db:"embedding" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatInteraction is one query/response exchange recorded against a website.
type ChatInteraction struct {
	ID        string    `db:"id" json:"id"`
	WebsiteID string    `db:"website_id" json:"website_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Query     string    `db:"query" json:"query"`
	Response  string    `db:"response" json:"response"`
	ChunkIDs  []string  `db:"chunk_ids" json:"chunk_ids"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScoredChunk is a raw nearest-neighbor hit: a chunk joined with its page
// metadata and the vector distance to the query (smaller is nearer).
type ScoredChunk struct {
	ChunkID  string
	Text     string
	URL      string
	Title    string
	Distance float64
}

// Passage is a retrieval result handed to callers: a chunk plus source
// metadata and a normalized 0-100 similarity score.
type Passage struct {
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Similarity int    `json:"similarity"`
}
