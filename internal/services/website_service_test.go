package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samir1maity/fixy/internal/core/memdb"
	"github.com/samir1maity/fixy/internal/models"
)

type capturedJob struct {
	websiteID string
	rootURL   string
}

type fakeQueue struct {
	jobs []capturedJob
}

func (q *fakeQueue) Enqueue(websiteID, rootURL string) {
	q.jobs = append(q.jobs, capturedJob{websiteID: websiteID, rootURL: rootURL})
}

func TestRegisterWebsite(t *testing.T) {
	db := memdb.New()
	queue := &fakeQueue{}
	svc := NewWebsiteService(db, queue)

	w, err := svc.Register(context.Background(), "cust-1", "https://docs.example.com/guide/")
	require.NoError(t, err)

	assert.Equal(t, "docs.example.com", w.Domain)
	assert.Equal(t, models.StatusPending, w.Status)
	assert.NotEmpty(t, w.ID)
	assert.NotEmpty(t, w.APISecret)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, w.ID, queue.jobs[0].websiteID)
	assert.Equal(t, "https://docs.example.com/guide", queue.jobs[0].rootURL, "root url is normalized before enqueue")

	stored, err := db.GetWebsiteByID(context.Background(), w.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRegisterWebsiteRejectsInvalidURLs(t *testing.T) {
	db := memdb.New()
	queue := &fakeQueue{}
	svc := NewWebsiteService(db, queue)

	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative/path", "example.com"} {
		_, err := svc.Register(context.Background(), "cust-1", raw)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", raw)
	}
	assert.Empty(t, queue.jobs)
}

func TestRegisterWebsiteRejectsDuplicateDomain(t *testing.T) {
	db := memdb.New()
	queue := &fakeQueue{}
	svc := NewWebsiteService(db, queue)

	_, err := svc.Register(context.Background(), "cust-1", "https://example.com")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "cust-1", "https://example.com/other-page")
	assert.ErrorIs(t, err, ErrDuplicateWebsite)

	// A different customer can register the same domain.
	_, err = svc.Register(context.Background(), "cust-2", "https://example.com")
	assert.NoError(t, err)
}

func TestListFillsGenericFailureMessage(t *testing.T) {
	db := memdb.New()
	svc := NewWebsiteService(db, &fakeQueue{})

	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w-ok", CustomerID: "cust-1", Domain: "ok.test",
		Status: models.StatusCompleted, APISecret: "s1",
	}))
	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w-bad", CustomerID: "cust-1", Domain: "bad.test",
		Status: models.StatusFailed, APISecret: "s2",
	}))
	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w-bad2", CustomerID: "cust-1", Domain: "bad2.test",
		Status: models.StatusFailed, StatusMessage: "specific reason", APISecret: "s3",
	}))

	sites, err := svc.List(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, sites, 3)

	byID := make(map[string]models.Website, len(sites))
	for _, w := range sites {
		byID[w.ID] = w
	}
	assert.Empty(t, byID["w-ok"].StatusMessage)
	assert.Equal(t, genericFailureMessage, byID["w-bad"].StatusMessage)
	assert.Equal(t, "specific reason", byID["w-bad2"].StatusMessage)
}

func TestGetEnforcesOwnership(t *testing.T) {
	db := memdb.New()
	svc := NewWebsiteService(db, &fakeQueue{})

	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w1", CustomerID: "cust-1", Domain: "a.test", Status: models.StatusCompleted, APISecret: "s1",
	}))

	w, err := svc.Get(context.Background(), "cust-1", "w1")
	require.NoError(t, err)
	assert.Equal(t, "a.test", w.Domain)

	_, err = svc.Get(context.Background(), "cust-2", "w1")
	assert.ErrorIs(t, err, ErrWebsiteNotFound)

	_, err = svc.Get(context.Background(), "cust-1", "missing")
	assert.ErrorIs(t, err, ErrWebsiteNotFound)
}

func TestRegenerateSecretInvalidatesOldOne(t *testing.T) {
	db := memdb.New()
	svc := NewWebsiteService(db, &fakeQueue{})

	require.NoError(t, db.CreateWebsite(context.Background(), &models.Website{
		ID: "w1", CustomerID: "cust-1", Domain: "a.test", Status: models.StatusCompleted, APISecret: "old-secret",
	}))

	secret, err := svc.RegenerateSecret(context.Background(), "cust-1", "w1")
	require.NoError(t, err)
	assert.NotEqual(t, "old-secret", secret)

	byNew, err := db.GetWebsiteBySecret(context.Background(), secret)
	require.NoError(t, err)
	require.NotNil(t, byNew)
	assert.Equal(t, "w1", byNew.ID)

	byOld, err := db.GetWebsiteBySecret(context.Background(), "old-secret")
	require.NoError(t, err)
	assert.Nil(t, byOld)

	_, err = svc.RegenerateSecret(context.Background(), "cust-2", "w1")
	assert.ErrorIs(t, err, ErrWebsiteNotFound)
}
