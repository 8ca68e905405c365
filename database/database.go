package database

import (
	"context"

	"github.com/tieubaoca/medguide-be/types"
)

// VectorDatabase defines the knowledge base operations used by the indexer
// and the answer pipeline.
type VectorDatabase interface {
	// ReInit drops and recreates the knowledge class. Destructive, full
	// rebuild semantics; there is no incremental update path.
	ReInit() error

	// BatchInsertChunks ingests text chunks with their provenance metadata.
	BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error

	// Search runs a hybrid (bm25 + vector) query and returns up to limit
	// matches, best first.
	Search(ctx context.Context, query string, limit int) ([]types.Document, error)
}

// MemoryStore defines the conversation history operations, keyed by user
// and session identifiers.
type MemoryStore interface {
	AppendMessage(ctx context.Context, userID, sessionID string, msg types.Message) error
	RecentMessages(ctx context.Context, userID, sessionID string, limit int) ([]types.Message, error)
	Clear(ctx context.Context, userID, sessionID string) error
}
