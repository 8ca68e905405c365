package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/types"
)

type fakeSearcher struct {
	docs      []types.Document
	err       error
	lastQuery string
	lastLimit int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	f.lastQuery = query
	f.lastLimit = limit
	return f.docs, f.err
}

type fakeMemory struct {
	messages    []types.Message
	appended    []types.Message
	recentErr   error
	appendErr   error
	cleared     bool
	recentLimit int
}

func (f *fakeMemory) AppendMessage(ctx context.Context, userID, sessionID string, msg types.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeMemory) RecentMessages(ctx context.Context, userID, sessionID string, limit int) ([]types.Message, error) {
	f.recentLimit = limit
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.messages, nil
}

func (f *fakeMemory) Clear(ctx context.Context, userID, sessionID string) error {
	f.cleared = true
	return nil
}

func chunkDocs(n int) []types.Document {
	docs := make([]types.Document, n)
	for i := range docs {
		docs[i] = types.Document{Content: fmt.Sprintf("chunk %d", i+1)}
	}
	return docs
}

// promptRecorder captures the final prompt handed to the model.
func promptRecorder(answer string) (*fakeAI, *string) {
	var prompt string
	ai := &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			prompt = messages[len(messages)-1].Content
			return answer, nil
		},
	}
	return ai, &prompt
}

func retrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{TopK: 5, MinMatches: 2, HistoryWindow: 3}
}

var testDomains = []string{"nih.gov", "mayoclinic.org"}

func TestAnswerStrongContextAtThreshold(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(2)}
	memory := &fakeMemory{}
	ai, prompt := promptRecorder("the glucose level is normal")
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	answer, count, err := svc.Answer(context.Background(), "what is my glucose level", "u1", "s1")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "the glucose level is normal" {
		t.Errorf("unexpected answer: %q", answer)
	}
	if count != 2 {
		t.Errorf("expected match count 2, got %d", count)
	}
	// count == threshold takes the confident branch.
	if strings.Contains(*prompt, "web search") {
		t.Error("strong-context branch must not mention web search")
	}
	if !strings.Contains(*prompt, "chunk 1") || !strings.Contains(*prompt, "chunk 2") {
		t.Error("retrieved chunks missing from prompt")
	}
	if searcher.lastLimit != 5 {
		t.Errorf("expected search limit 5, got %d", searcher.lastLimit)
	}
}

func TestAnswerWeakContextBelowThreshold(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(1)}
	memory := &fakeMemory{}
	ai, prompt := promptRecorder("based on trusted sources ...")
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	_, count, err := svc.Answer(context.Background(), "what is ferritin", "u1", "s1")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected match count 1, got %d", count)
	}
	for _, domain := range testDomains {
		if !strings.Contains(*prompt, domain) {
			t.Errorf("weak-context prompt missing allowed domain %s", domain)
		}
	}
}

func TestAnswerRetrievalErrorFallsBackToWeakContext(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("weaviate unreachable")}
	memory := &fakeMemory{}
	ai, prompt := promptRecorder("answer")
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	answer, count, err := svc.Answer(context.Background(), "what is TSH", "u1", "s1")
	if err != nil {
		t.Fatalf("retrieval failure must not fail the call: %v", err)
	}
	if answer != "answer" {
		t.Errorf("unexpected answer: %q", answer)
	}
	if count != 0 {
		t.Errorf("expected match count 0, got %d", count)
	}
	if !strings.Contains(*prompt, testDomains[0]) {
		t.Error("expected weak-context prompt after retrieval failure")
	}
}

func TestAnswerModelErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(3)}
	memory := &fakeMemory{}
	ai := &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			return "", fmt.Errorf("model overloaded")
		},
	}
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	if _, _, err := svc.Answer(context.Background(), "q", "u1", "s1"); err == nil {
		t.Fatal("expected model error to propagate")
	}
	if len(memory.appended) != 0 {
		t.Error("failed turns must not be stored in memory")
	}
}

func TestAnswerStoresRawTurnInMemory(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(3)}
	memory := &fakeMemory{}
	ai, _ := promptRecorder("stored answer")
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	if _, _, err := svc.Answer(context.Background(), "raw question", "u1", "s1"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(memory.appended) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(memory.appended))
	}
	// Memory keeps the user's question, not the assembled prompt.
	if memory.appended[0].Role != types.RoleUser || memory.appended[0].Content != "raw question" {
		t.Errorf("unexpected stored user turn: %+v", memory.appended[0])
	}
	if memory.appended[1].Role != types.RoleAssistant || memory.appended[1].Content != "stored answer" {
		t.Errorf("unexpected stored assistant turn: %+v", memory.appended[1])
	}
}

func TestAnswerBoundsHistoryWindow(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(3)}
	memory := &fakeMemory{messages: []types.Message{
		{Role: types.RoleUser, Content: "earlier question"},
		{Role: types.RoleAssistant, Content: "earlier answer"},
	}}
	var gotMessages []types.Message
	ai := &fakeAI{
		chat: func(cfg types.AgentConfig, messages []types.Message) (string, error) {
			gotMessages = messages
			return "ok", nil
		},
	}
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	if _, _, err := svc.Answer(context.Background(), "next question", "u1", "s1"); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	// Three exchanges of history means six messages requested.
	if memory.recentLimit != 6 {
		t.Errorf("expected history limit 6, got %d", memory.recentLimit)
	}
	if len(gotMessages) != 3 {
		t.Fatalf("expected history plus prompt, got %d messages", len(gotMessages))
	}
	if gotMessages[0].Content != "earlier question" {
		t.Errorf("history must precede the prompt, got %q first", gotMessages[0].Content)
	}
}

func TestAnswerHistoryErrorIsNotFatal(t *testing.T) {
	searcher := &fakeSearcher{docs: chunkDocs(3)}
	memory := &fakeMemory{recentErr: fmt.Errorf("mongo down")}
	ai, _ := promptRecorder("still answered")
	svc := NewChatService(ai, searcher, memory, retrievalConfig(), testDomains)

	answer, _, err := svc.Answer(context.Background(), "q", "u1", "s1")
	if err != nil {
		t.Fatalf("history failure must not fail the call: %v", err)
	}
	if answer != "still answered" {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestResetMemory(t *testing.T) {
	memory := &fakeMemory{}
	ai, _ := promptRecorder("")
	svc := NewChatService(ai, &fakeSearcher{}, memory, retrievalConfig(), testDomains)

	if err := svc.ResetMemory(context.Background(), "u1", "s1"); err != nil {
		t.Fatalf("ResetMemory failed: %v", err)
	}
	if !memory.cleared {
		t.Error("expected memory to be cleared")
	}
}
