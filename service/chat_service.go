package service

import (
	"context"
	"log"
	"strings"

	"github.com/tieubaoca/medguide-be/agent"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/types"
)

// VectorSearcher is the retrieval slice of the vector database the answer
// pipeline needs.
type VectorSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.Document, error)
}

// ChatService is the retrieval-gated answer pipeline: retrieve, gate on the
// match count, pick the weak- or strong-context prompt, answer with bounded
// conversation history.
type ChatService struct {
	ai             AIService
	vectorDB       VectorSearcher
	memory         database.MemoryStore
	topK           int
	minMatches     int
	historyWindow  int
	allowedDomains []string
}

func NewChatService(ai AIService, vectorDB VectorSearcher, memory database.MemoryStore, cfg config.RetrievalConfig, allowedDomains []string) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MinMatches <= 0 {
		cfg.MinMatches = 1
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 3
	}
	return &ChatService{
		ai:             ai,
		vectorDB:       vectorDB,
		memory:         memory,
		topK:           cfg.TopK,
		minMatches:     cfg.MinMatches,
		historyWindow:  cfg.HistoryWindow,
		allowedDomains: allowedDomains,
	}
}

// Answer resolves one user question. Retrieval failures degrade to the
// weak-context branch instead of failing the call; a model failure
// propagates. Returns the answer and the match count the gate used.
func (s *ChatService) Answer(ctx context.Context, query, userID, sessionID string) (string, int, error) {
	docs, err := s.vectorDB.Search(ctx, query, s.topK)
	if err != nil {
		log.Printf("Warning: knowledge base search failed: %v", err)
		docs = nil
	}
	count := len(docs)

	contents := make([]string, 0, count)
	for _, doc := range docs {
		if doc.Content != "" {
			contents = append(contents, doc.Content)
		}
	}
	localContext := strings.Join(contents, "\n\n")

	// The gate is a match-count check: fewer matches than the threshold
	// means retrieval is weak and the model may supplement with the
	// allow-listed web search.
	var prompt string
	if count < s.minMatches {
		prompt = agent.WeakContextPrompt(query, localContext, s.allowedDomains)
	} else {
		prompt = agent.StrongContextPrompt(query, localContext)
	}

	history, err := s.memory.RecentMessages(ctx, userID, sessionID, s.historyWindow*2)
	if err != nil {
		log.Printf("Warning: failed to load conversation history: %v", err)
		history = nil
	}

	messages := append(history, types.Message{Role: types.RoleUser, Content: prompt})
	answer, err := s.ai.Chat(ctx, agent.Chat, messages)
	if err != nil {
		return "", count, err
	}

	// History keeps the raw question and answer, not the full prompt.
	if err := s.memory.AppendMessage(ctx, userID, sessionID, types.Message{Role: types.RoleUser, Content: query}); err != nil {
		log.Printf("Warning: failed to store user message: %v", err)
	}
	if err := s.memory.AppendMessage(ctx, userID, sessionID, types.Message{Role: types.RoleAssistant, Content: answer}); err != nil {
		log.Printf("Warning: failed to store assistant message: %v", err)
	}

	return answer, count, nil
}

// ResetMemory clears the conversation history for a session. Called at the
// start of each full pipeline run.
func (s *ChatService) ResetMemory(ctx context.Context, userID, sessionID string) error {
	return s.memory.Clear(ctx, userID, sessionID)
}
