package repository

import (
	"context"
	"log"
	"time"

	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const memoryCollection = "agent_memory"

type memoryRepo struct {
	collection *mongo.Collection
}

// NewMemoryRepo returns the conversation history store backed by the
// agent_memory collection, creating the collection index on first use.
func NewMemoryRepo(db *mongo.Database) database.MemoryStore {
	collection := db.Collection(memoryCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "session_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}
	if _, err := collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		log.Printf("Error creating memory indexes: %v", err)
	}

	return &memoryRepo{
		collection: collection,
	}
}

func (r *memoryRepo) AppendMessage(ctx context.Context, userID, sessionID string, msg types.Message) error {
	record := types.MemoryRecord{
		UserID:    userID,
		SessionID: sessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: time.Now().UnixNano(),
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// RecentMessages returns up to limit messages for the session in
// chronological order, oldest first.
func (r *memoryRepo) RecentMessages(ctx context.Context, userID, sessionID string, limit int) ([]types.Message, error) {
	filter := bson.M{"user_id": userID, "session_id": sessionID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []types.MemoryRecord
	for cursor.Next(ctx) {
		var record types.MemoryRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	// The query sorts newest first; reverse into conversation order.
	messages := make([]types.Message, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		messages = append(messages, types.Message{
			Role:    records[i].Role,
			Content: records[i].Content,
		})
	}
	return messages, nil
}

func (r *memoryRepo) Clear(ctx context.Context, userID, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "session_id": sessionID})
	return err
}
