package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

// hybridAlpha balances bm25 against vector similarity; 0.5 weighs both
// equally.
const hybridAlpha = 0.5

var (
	LAB_CHUNK_CLASS        = "LabChunk"
	LAB_CHUNK_CLASS_OBJECT = &models.Class{
		Class: LAB_CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "fileName", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore holds the lab-report knowledge base: chunks of converted
// source text and generated analyses, searchable with hybrid retrieval.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	LAB_CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec
	LAB_CHUNK_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	store := &WeaviateStore{client: client}
	if err := store.ensureClass(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// ensureClass creates the LabChunk class when it does not exist yet.
func (s *WeaviateStore) ensureClass(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}
	for _, class := range schema.Classes {
		if class.Class == LAB_CHUNK_CLASS {
			return nil
		}
	}
	err = s.client.Schema().ClassCreator().WithClass(LAB_CHUNK_CLASS_OBJECT).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s class: %v", LAB_CHUNK_CLASS, err)
	}
	return nil
}

// ReInit drops the whole knowledge class and creates it again. Every prior
// chunk is gone afterwards; callers use this for full rebuilds only.
func (s *WeaviateStore) ReInit() error {
	ctx := context.Background()
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}
	for _, class := range schema.Classes {
		if class.Class == LAB_CHUNK_CLASS {
			if err := s.client.Schema().ClassDeleter().WithClassName(LAB_CHUNK_CLASS).Do(ctx); err != nil {
				return fmt.Errorf("failed to delete %s class: %v", LAB_CHUNK_CLASS, err)
			}
			break
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(LAB_CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %v", LAB_CHUNK_CLASS, err)
	}
	return nil
}

// BatchInsertChunks writes chunks in batches of BATCH_SIZE. Embeddings are
// produced server-side by the configured text2vec module.
func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	total := len(chunks)
	now := time.Now().Unix()
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class: LAB_CHUNK_CLASS,
				Properties: map[string]interface{}{
					"content":   chunks[j].Content,
					"fileName":  chunks[j].FileName,
					"source":    chunks[j].Source,
					"page":      chunks[j].Page,
					"createdAt": now,
				},
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

// Search runs a hybrid bm25+vector query against the knowledge class.
func (s *WeaviateStore) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "fileName"},
		{Name: "source"},
		{Name: "page"},
		{Name: "createdAt"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "score"}, {Name: "id"}}},
	}

	hybrid := (&graphql.HybridArgumentBuilder{}).
		WithQuery(query).
		WithAlpha(hybridAlpha)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(LAB_CHUNK_CLASS).
		WithFields(fields...).
		WithHybrid(hybrid)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var docs []types.Document
	if data, ok := result.Data["Get"].(map[string]interface{})[LAB_CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			raw, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			doc := types.Document{
				Content:   parseString(raw["content"]),
				FileName:  parseString(raw["fileName"]),
				Source:    parseString(raw["source"]),
				Page:      int(parseFloat(raw["page"])),
				CreatedAt: int64(parseFloat(raw["createdAt"])),
			}
			if additional, ok := raw["_additional"].(map[string]interface{}); ok {
				doc.ID = parseString(additional["id"])
				doc.Score = parseScore(additional["score"])
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Helper functions
func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

// parseScore handles the GraphQL quirk of _additional.score arriving as a
// string on some server versions.
func parseScore(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
