package types

const (
	// Provenance labels for knowledge base entries.
	SourcePDF    = "pdf"
	SourceOutput = "output"
)

// DocumentChunk is one chunk of a text artifact headed for the vector store.
type DocumentChunk struct {
	Content  string // The actual text content
	FileName string // Name of the originating .txt file
	Source   string // SourcePDF for converted source text, SourceOutput for generated analyses
	Page     int    // Page number when known, 0 otherwise
}

// Document is a knowledge base entry as returned by the vector store.
type Document struct {
	ID        string  `json:"id"`
	Content   string  `json:"content"`
	FileName  string  `json:"file_name"`
	Source    string  `json:"source"`
	Page      int     `json:"page"`
	Score     float64 `json:"score"`
	CreatedAt int64   `json:"created_at"`
}

// DocumentServiceConfig contains configuration options for text processing
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks
	OverlapSize  int // Size of overlap between chunks
	MaxPageChars int // Per-page character budget before prompting
}
