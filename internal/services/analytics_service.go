package services

import (
	"context"
	"fmt"
	"time"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

// UserChatStats summarizes chat activity across all of a customer's websites.
type UserChatStats struct {
	TotalChats     int `json:"totalChats"`
	TodayChats     int `json:"todayChats"`
	ActiveWebsites int `json:"activeWebsites"`
	TotalWebsites  int `json:"totalWebsites"`
}

// WebsiteChatStats summarizes chat activity for one website.
type WebsiteChatStats struct {
	TotalChats int `json:"totalChats"`
	TodayChats int `json:"todayChats"`
}

type AnalyticsService struct {
	db core.DbClient
}

func NewAnalyticsService(db core.DbClient) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// UserStats counts only the caller's own websites; a customer never sees
// interactions recorded against someone else's corpus.
func (s *AnalyticsService) UserStats(ctx context.Context, customerID string) (*UserChatStats, error) {
	sites, err := s.db.ListWebsitesByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	if len(sites) == 0 {
		return &UserChatStats{}, nil
	}

	ids := make([]string, 0, len(sites))
	active := 0
	for _, w := range sites {
		ids = append(ids, w.ID)
		if w.Status == models.StatusCompleted {
			active++
		}
	}

	total, err := s.db.CountChatInteractions(ctx, ids, nil)
	if err != nil {
		return nil, fmt.Errorf("count chats: %w", err)
	}
	midnight := startOfToday()
	today, err := s.db.CountChatInteractions(ctx, ids, &midnight)
	if err != nil {
		return nil, fmt.Errorf("count today's chats: %w", err)
	}

	return &UserChatStats{
		TotalChats:     total,
		TodayChats:     today,
		ActiveWebsites: active,
		TotalWebsites:  len(sites),
	}, nil
}

func (s *AnalyticsService) WebsiteStats(ctx context.Context, customerID, websiteID string) (*WebsiteChatStats, error) {
	w, err := s.db.GetWebsiteByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CustomerID != customerID {
		return nil, ErrWebsiteNotFound
	}

	ids := []string{websiteID}
	total, err := s.db.CountChatInteractions(ctx, ids, nil)
	if err != nil {
		return nil, fmt.Errorf("count chats: %w", err)
	}
	midnight := startOfToday()
	today, err := s.db.CountChatInteractions(ctx, ids, &midnight)
	if err != nil {
		return nil, fmt.Errorf("count today's chats: %w", err)
	}

	return &WebsiteChatStats{TotalChats: total, TodayChats: today}, nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
