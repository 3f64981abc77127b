package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/samir1maity/fixy/internal/core"
	"github.com/samir1maity/fixy/internal/models"
)

const chatSystemPrompt = "You are a helpful assistant that answers visitor questions " +
	"using only the provided excerpts from the website. If the excerpts do not contain " +
	"the answer, say so plainly. Reference sources with [1], [2], etc. notation."

const noContextAnswer = "I couldn't find any relevant information to answer your question."

// Source identifies one page a chat answer drew from.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ChatResult is one answered visitor query.
type ChatResult struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"sessionId"`
}

// ChatService turns a visitor question into an answer grounded in the
// website's retrieved passages. Interactions are recorded for analytics and
// for replaying session history into follow-up prompts.
type ChatService struct {
	db        core.DbClient
	retrieval *RetrievalService
	llm       core.LLMProvider
	log       *zap.Logger
}

func NewChatService(db core.DbClient, retrieval *RetrievalService, llm core.LLMProvider, log *zap.Logger) *ChatService {
	return &ChatService{db: db, retrieval: retrieval, llm: llm, log: log}
}

// Answer handles one chat turn. A blank sessionID starts a new session;
// otherwise prior turns of the session are replayed into the prompt.
func (s *ChatService) Answer(ctx context.Context, websiteID, query, sessionID string) (*ChatResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	passages, err := s.retrieval.Retrieve(ctx, websiteID, query, DefaultTopK)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return &ChatResult{Answer: noContextAnswer, Sources: []Source{}, SessionID: sessionID}, nil
	}
	passages = FilterPassages(passages, SimilarityThreshold)

	var history []models.ChatInteraction
	if hist, err := s.db.ListChatBySession(ctx, sessionID); err != nil {
		s.log.Warn("load chat history failed", zap.String("session_id", sessionID), zap.Error(err))
	} else {
		history = hist
	}

	answer, err := s.llm.Generate(ctx, chatSystemPrompt, buildUserPrompt(query, passages, history))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	chunkIDs := make([]string, 0, len(passages))
	for _, p := range passages {
		chunkIDs = append(chunkIDs, p.ChunkID)
	}
	ci := &models.ChatInteraction{
		ID:        uuid.NewString(),
		WebsiteID: websiteID,
		SessionID: sessionID,
		Query:     query,
		Response:  answer,
		ChunkIDs:  chunkIDs,
	}
	if err := s.db.CreateChatInteraction(ctx, ci); err != nil {
		s.log.Warn("record chat interaction failed", zap.String("website_id", websiteID), zap.Error(err))
	}

	return &ChatResult{
		Answer:    answer,
		Sources:   uniqueSources(passages),
		SessionID: sessionID,
	}, nil
}

// History returns the session's prior turns in chronological order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]models.ChatInteraction, error) {
	return s.db.ListChatBySession(ctx, sessionID)
}

func buildUserPrompt(query string, passages []models.Passage, history []models.ChatInteraction) string {
	var b strings.Builder

	b.WriteString("Website excerpts:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, p.URL, p.Text)
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, h := range history {
			fmt.Fprintf(&b, "Visitor: %s\nAssistant: %s\n", h.Query, h.Response)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Visitor question: %s\n", query)
	b.WriteString("Answer the question based only on the excerpts above.")
	return b.String()
}

// uniqueSources deduplicates passages by URL, keeping first-seen order so the
// strongest match's page leads the citation list.
func uniqueSources(passages []models.Passage) []Source {
	seen := make(map[string]struct{}, len(passages))
	out := make([]Source, 0, len(passages))
	for _, p := range passages {
		if _, dup := seen[p.URL]; dup {
			continue
		}
		seen[p.URL] = struct{}{}
		title := p.Title
		if title == "" {
			title = p.URL
		}
		out = append(out, Source{URL: p.URL, Title: title})
	}
	return out
}
