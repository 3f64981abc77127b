package models

import "fmt"

// WebsiteStatus is the lifecycle state of a website's crawl+embed job.
type WebsiteStatus string

const (
	StatusPending   WebsiteStatus = "pending"
	StatusCrawling  WebsiteStatus = "crawling"
	StatusEmbedding WebsiteStatus = "embedding"
	StatusCompleted WebsiteStatus = "completed"
	StatusFailed    WebsiteStatus = "failed"
)

// Valid reports whether s is a known status value.
func (s WebsiteStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCrawling, StatusEmbedding, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
// A failed website must be re-registered to try again; there is no retry path.
func (s WebsiteStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. The lifecycle is strictly forward: pending → crawling → embedding →
// completed, with failed reachable from any non-terminal state.
func (s WebsiteStatus) CanTransition(next WebsiteStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusFailed:
		return true
	case StatusCrawling:
		return s == StatusPending
	case StatusEmbedding:
		return s == StatusCrawling
	case StatusCompleted:
		return s == StatusEmbedding
	}
	return false
}

// Transition returns next if the move is legal, or an error naming both states.
func (s WebsiteStatus) Transition(next WebsiteStatus) (WebsiteStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("illegal status transition %q -> %q", s, next)
	}
	return next, nil
}
