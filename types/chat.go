package types

type AskRequest struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type AskResponse struct {
	Answer        string `json:"answer"`
	RetrievedDocs int    `json:"retrieved_docs"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchResponse struct {
	Documents []Document `json:"documents"`
}

// MemoryRecord is one stored conversation turn, keyed by user and session.
type MemoryRecord struct {
	UserID    string `bson:"user_id" json:"user_id"`
	SessionID string `bson:"session_id" json:"session_id"`
	Role      string `bson:"role" json:"role"`
	Content   string `bson:"content" json:"content"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
}
