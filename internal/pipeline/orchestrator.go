package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/core/scraper"
	"github.com/samir1maity/fixy/internal/models"
)

// Stage-fatal conditions. Both leave the website in failed with a
// user-facing statusMessage; the distinction matters to that message.
var (
	ErrNoContent    = errors.New("no content could be extracted from the website")
	ErrNoEmbeddings = errors.New("no embeddings could be generated for the crawled content")
)

const (
	msgNoContent    = "We couldn't extract any content from this website. It may rely on client-side rendering or block automated crawlers."
	msgNoEmbeddings = "Content was crawled but a search index could not be built. Please try a different website or contact support."
	msgInternal     = "Processing failed. Please try a different website or contact support."
)

// Job is one unit of background work: crawl-then-embed a registered website.
type Job struct {
	WebsiteID string
	RootURL   string
}

// Orchestrator drives websites through their lifecycle. Registration enqueues
// a job and returns immediately; a bounded worker pool picks it up, runs the
// crawler to completion, then the batch processor, and records the terminal
// state. Background errors never reach a caller synchronously; they are only
// observable through the website's status and statusMessage.
type Orchestrator struct {
	db        core.DbClient
	crawler   *scraper.Crawler
	processor *Processor
	log       *zap.Logger
	jobs      chan Job
	group     *errgroup.Group
}

func NewOrchestrator(db core.DbClient, crawler *scraper.Crawler, processor *Processor, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		db:        db,
		crawler:   crawler,
		processor: processor,
		log:       log,
		jobs:      make(chan Job, 64),
	}
}

// Start launches numWorkers goroutines consuming the job queue. Workers exit
// when ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	o.group, _ = errgroup.WithContext(ctx)
	for w := 1; w <= numWorkers; w++ {
		w := w
		o.group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					o.log.Info("orchestrator worker shutting down", zap.Int("worker", w))
					return nil
				case job := <-o.jobs:
					if err := o.ProcessOne(ctx, job); err != nil {
						o.log.Error("website job failed",
							zap.Int("worker", w),
							zap.String("website_id", job.WebsiteID),
							zap.Error(err))
					}
				}
			}
		})
	}
}

// Wait blocks until all workers have exited.
func (o *Orchestrator) Wait() error {
	if o.group == nil {
		return nil
	}
	return o.group.Wait()
}

// Enqueue schedules a website for processing. Blocks if the queue is full,
// which is the backpressure when many websites register at once.
func (o *Orchestrator) Enqueue(websiteID, rootURL string) {
	o.jobs <- Job{WebsiteID: websiteID, RootURL: rootURL}
}

// ProcessOne runs the full crawl+embed pipeline for one website. Any panic or
// error inside a stage marks the website failed before the error is returned
// to the worker for logging.
func (o *Orchestrator) ProcessOne(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
			o.failWebsite(job.WebsiteID, msgInternal)
		}
	}()

	w, err := o.db.GetWebsiteByID(ctx, job.WebsiteID)
	if err != nil {
		return fmt.Errorf("load website: %w", err)
	}
	if w == nil {
		return fmt.Errorf("website not found: %s", job.WebsiteID)
	}

	status := w.Status
	if status, err = o.transition(ctx, job.WebsiteID, status, models.StatusCrawling, ""); err != nil {
		return err
	}

	res, err := o.crawler.Crawl(ctx, job.WebsiteID, job.RootURL)
	if err != nil {
		o.failWebsite(job.WebsiteID, msgInternal)
		return fmt.Errorf("crawl: %w", err)
	}
	if !res.Success {
		// Embedding is never attempted against an empty corpus.
		o.failWebsite(job.WebsiteID, msgNoContent)
		return ErrNoContent
	}

	if status, err = o.transition(ctx, job.WebsiteID, status, models.StatusEmbedding, ""); err != nil {
		return err
	}

	total, err := o.processor.Run(ctx, job.WebsiteID)
	if err != nil {
		o.failWebsite(job.WebsiteID, msgInternal)
		return fmt.Errorf("embed: %w", err)
	}
	if total == 0 {
		o.failWebsite(job.WebsiteID, msgNoEmbeddings)
		return ErrNoEmbeddings
	}

	if _, err = o.transition(ctx, job.WebsiteID, status, models.StatusCompleted, ""); err != nil {
		return err
	}
	if err := o.db.RecordWebsiteCrawl(ctx, job.WebsiteID, time.Now()); err != nil {
		o.log.Warn("record crawl time failed", zap.String("website_id", job.WebsiteID), zap.Error(err))
	}

	o.log.Info("website processing completed",
		zap.String("website_id", job.WebsiteID),
		zap.Int("pages", res.PagesStored),
		zap.Int("chunks_embedded", total))
	return nil
}

// transition validates the lifecycle move before persisting it.
func (o *Orchestrator) transition(ctx context.Context, websiteID string, from, to models.WebsiteStatus, message string) (models.WebsiteStatus, error) {
	next, err := from.Transition(to)
	if err != nil {
		return from, err
	}
	if err := o.db.UpdateWebsiteStatus(ctx, websiteID, next, message); err != nil {
		return from, fmt.Errorf("update status to %s: %w", next, err)
	}
	return next, nil
}

// failWebsite durably records the failed state. It deliberately uses a fresh
// context: the job's context may already be cancelled, and the failed row must
// land regardless.
func (o *Orchestrator) failWebsite(websiteID, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.db.UpdateWebsiteStatus(ctx, websiteID, models.StatusFailed, message); err != nil {
		o.log.Error("failed to mark website failed", zap.String("website_id", websiteID), zap.Error(err))
	}
}
