// Package memdb is an in-memory core.DbClient used by tests and local
// development. Vector search is brute-force cosine distance over the stored
// embeddings, mirroring the pgvector `<=>` ordering.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

type MemDB struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	websites     map[string]*models.Website
	pages        map[string]*models.Page
	chunks       map[string]*models.Chunk
	embeddings   map[string]*models.Embedding // keyed by chunkID+"/"+modelName
	interactions []*models.ChatInteraction
	chunkOrder   []string // insertion order, stands in for created_at ordering
}

var _ core.DbClient = (*MemDB)(nil)

func New() *MemDB {
	return &MemDB{
		users:      make(map[string]*models.User),
		websites:   make(map[string]*models.Website),
		pages:      make(map[string]*models.Page),
		chunks:     make(map[string]*models.Chunk),
		embeddings: make(map[string]*models.Embedding),
	}
}

func embKey(chunkID, modelName string) string { return chunkID + "/" + modelName }

func (m *MemDB) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return errors.New("email already registered")
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemDB) CreateWebsite(_ context.Context, w *models.Website) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.websites {
		if existing.CustomerID == w.CustomerID && existing.Domain == w.Domain {
			return errors.New("duplicate website")
		}
	}
	cp := *w
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.websites[w.ID] = &cp
	return nil
}

func (m *MemDB) GetWebsiteByID(_ context.Context, id string) (*models.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.websites[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *MemDB) GetWebsiteByDomain(_ context.Context, customerID, domain string) (*models.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.websites {
		if w.CustomerID == customerID && w.Domain == domain {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemDB) GetWebsiteBySecret(_ context.Context, secret string) (*models.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.websites {
		if w.APISecret == secret {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemDB) ListWebsitesByCustomer(_ context.Context, customerID string) ([]models.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Website
	for _, w := range m.websites {
		if w.CustomerID == customerID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemDB) UpdateWebsiteStatus(_ context.Context, id string, status models.WebsiteStatus, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.websites[id]
	if !ok {
		return fmt.Errorf("website not found: %s", id)
	}
	w.Status = status
	w.StatusMessage = message
	w.UpdatedAt = time.Now()
	return nil
}

func (m *MemDB) RecordWebsiteCrawl(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.websites[id]
	if !ok {
		return fmt.Errorf("website not found: %s", id)
	}
	w.LastCrawledAt = &at
	return nil
}

func (m *MemDB) UpdateWebsiteSecret(_ context.Context, id, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.websites[id]
	if !ok {
		return fmt.Errorf("website not found: %s", id)
	}
	w.APISecret = secret
	return nil
}

func (m *MemDB) CreatePage(_ context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *page
	m.pages[page.ID] = &cp
	return nil
}

func (m *MemDB) CountPagesByWebsite(_ context.Context, websiteID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.pages {
		if p.WebsiteID == websiteID {
			n++
		}
	}
	return n, nil
}

func (m *MemDB) InsertChunks(_ context.Context, chunks []models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range chunks {
		cp := chunks[i]
		m.chunks[cp.ID] = &cp
		m.chunkOrder = append(m.chunkOrder, cp.ID)
	}
	return nil
}

func (m *MemDB) ListUnembeddedChunks(_ context.Context, websiteID, modelName string, limit int) ([]models.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Chunk
	for _, id := range m.chunkOrder {
		if len(out) >= limit {
			break
		}
		c := m.chunks[id]
		page, ok := m.pages[c.PageID]
		if !ok || page.WebsiteID != websiteID {
			continue
		}
		if _, embedded := m.embeddings[embKey(c.ID, modelName)]; embedded {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *MemDB) InsertEmbedding(_ context.Context, emb *models.Embedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := embKey(emb.ChunkID, emb.ModelName)
	if _, exists := m.embeddings[key]; exists {
		// Same-model re-embedding is a no-op.
		return nil
	}
	cp := *emb
	m.embeddings[key] = &cp
	return nil
}

func (m *MemDB) SearchWebsiteChunks(_ context.Context, websiteID string, query []float32, modelName string, k int) ([]models.ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []models.ScoredChunk
	for _, e := range m.embeddings {
		if e.ModelName != modelName {
			continue
		}
		c, ok := m.chunks[e.ChunkID]
		if !ok {
			continue
		}
		page, ok := m.pages[c.PageID]
		if !ok || page.WebsiteID != websiteID {
			continue
		}
		hits = append(hits, models.ScoredChunk{
			ChunkID:  c.ID,
			Text:     c.Text,
			URL:      page.URL,
			Title:    page.Title,
			Distance: cosineDistance(query, e.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MemDB) CreateChatInteraction(_ context.Context, ci *models.ChatInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ci
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.interactions = append(m.interactions, &cp)
	return nil
}

func (m *MemDB) ListChatBySession(_ context.Context, sessionID string) ([]models.ChatInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ChatInteraction
	for _, ci := range m.interactions {
		if ci.SessionID == sessionID {
			out = append(out, *ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemDB) CountChatInteractions(_ context.Context, websiteIDs []string, since *time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]struct{}, len(websiteIDs))
	for _, id := range websiteIDs {
		wanted[id] = struct{}{}
	}
	n := 0
	for _, ci := range m.interactions {
		if _, ok := wanted[ci.WebsiteID]; !ok {
			continue
		}
		if since != nil && ci.CreatedAt.Before(*since) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *MemDB) Close() error { return nil }

// cosineDistance matches pgvector's `<=>` operator: 1 - cosine similarity.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
