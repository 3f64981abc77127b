package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/core/scraper"
	"github.com/samir1maity/fixy/internal/models"
)

var (
	ErrInvalidURL       = errors.New("invalid website url")
	ErrDuplicateWebsite = errors.New("website already registered for this account")
	ErrWebsiteNotFound  = errors.New("website not found")
)

// genericFailureMessage is shown for failed websites that never got a specific
// statusMessage recorded.
const genericFailureMessage = "Processing failed. Please try a different website or contact support."

// Enqueuer schedules a registered website for background processing.
type Enqueuer interface {
	Enqueue(websiteID, rootURL string)
}

type WebsiteService struct {
	db    core.DbClient
	queue Enqueuer
}

func NewWebsiteService(db core.DbClient, queue Enqueuer) *WebsiteService {
	return &WebsiteService{db: db, queue: queue}
}

// Register validates the URL, creates the website in pending state and hands it
// to the background pipeline. Registration returns immediately; processing is
// observed through the website's status.
func (s *WebsiteService) Register(ctx context.Context, customerID, rawURL string) (*models.Website, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	domain := u.Hostname()

	existing, err := s.db.GetWebsiteByDomain(ctx, customerID, domain)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateWebsite
	}

	root, err := scraper.Normalize(rawURL)
	if err != nil {
		return nil, ErrInvalidURL
	}

	w := &models.Website{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Domain:     domain,
		Status:     models.StatusPending,
		APISecret:  uuid.NewString(),
	}
	if err := s.db.CreateWebsite(ctx, w); err != nil {
		return nil, fmt.Errorf("create website: %w", err)
	}

	s.queue.Enqueue(w.ID, root)
	return w, nil
}

// List returns the customer's websites. Failed rows without a recorded
// statusMessage get the generic one so the dashboard never shows a bare
// "failed".
func (s *WebsiteService) List(ctx context.Context, customerID string) ([]models.Website, error) {
	sites, err := s.db.ListWebsitesByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range sites {
		if sites[i].Status == models.StatusFailed && sites[i].StatusMessage == "" {
			sites[i].StatusMessage = genericFailureMessage
		}
	}
	return sites, nil
}

func (s *WebsiteService) Get(ctx context.Context, customerID, id string) (*models.Website, error) {
	w, err := s.db.GetWebsiteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CustomerID != customerID {
		return nil, ErrWebsiteNotFound
	}
	if w.Status == models.StatusFailed && w.StatusMessage == "" {
		w.StatusMessage = genericFailureMessage
	}
	return w, nil
}

// RegenerateSecret replaces the website's chat API secret, invalidating the
// previous one immediately.
func (s *WebsiteService) RegenerateSecret(ctx context.Context, customerID, id string) (string, error) {
	w, err := s.db.GetWebsiteByID(ctx, id)
	if err != nil {
		return "", err
	}
	if w == nil || w.CustomerID != customerID {
		return "", ErrWebsiteNotFound
	}

	secret := uuid.NewString()
	if err := s.db.UpdateWebsiteSecret(ctx, id, secret); err != nil {
		return "", fmt.Errorf("update secret: %w", err)
	}
	return secret, nil
}
