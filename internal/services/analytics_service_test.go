package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samir1maity/fixy/internal/core/memdb"
	"github.com/samir1maity/fixy/internal/models"
)

func recordChat(t *testing.T, db *memdb.MemDB, websiteID string, at time.Time) {
	t.Helper()
	require.NoError(t, db.CreateChatInteraction(context.Background(), &models.ChatInteraction{
		ID: websiteID + at.String(), WebsiteID: websiteID, SessionID: "s",
		Query: "q", Response: "r", CreatedAt: at,
	}))
}

func TestUserStats(t *testing.T) {
	db := memdb.New()
	ctx := context.Background()

	require.NoError(t, db.CreateWebsite(ctx, &models.Website{
		ID: "w1", CustomerID: "cust-1", Domain: "a.test", Status: models.StatusCompleted, APISecret: "s1",
	}))
	require.NoError(t, db.CreateWebsite(ctx, &models.Website{
		ID: "w2", CustomerID: "cust-1", Domain: "b.test", Status: models.StatusFailed, APISecret: "s2",
	}))
	require.NoError(t, db.CreateWebsite(ctx, &models.Website{
		ID: "w3", CustomerID: "cust-2", Domain: "c.test", Status: models.StatusCompleted, APISecret: "s3",
	}))

	now := time.Now()
	recordChat(t, db, "w1", now)
	recordChat(t, db, "w1", now.Add(-48*time.Hour))
	recordChat(t, db, "w2", now)
	recordChat(t, db, "w3", now) // other customer's website, must not count

	svc := NewAnalyticsService(db)
	stats, err := svc.UserStats(ctx, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalChats)
	assert.Equal(t, 2, stats.TodayChats)
	assert.Equal(t, 1, stats.ActiveWebsites)
	assert.Equal(t, 2, stats.TotalWebsites)
}

func TestUserStatsNoWebsites(t *testing.T) {
	svc := NewAnalyticsService(memdb.New())
	stats, err := svc.UserStats(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, &UserChatStats{}, stats)
}

func TestWebsiteStats(t *testing.T) {
	db := memdb.New()
	ctx := context.Background()

	require.NoError(t, db.CreateWebsite(ctx, &models.Website{
		ID: "w1", CustomerID: "cust-1", Domain: "a.test", Status: models.StatusCompleted, APISecret: "s1",
	}))

	now := time.Now()
	recordChat(t, db, "w1", now)
	recordChat(t, db, "w1", now.Add(-48*time.Hour))

	svc := NewAnalyticsService(db)
	stats, err := svc.WebsiteStats(ctx, "cust-1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChats)
	assert.Equal(t, 1, stats.TodayChats)

	_, err = svc.WebsiteStats(ctx, "cust-2", "w1")
	assert.ErrorIs(t, err, ErrWebsiteNotFound)
}
