package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	assistant "github.com/Protocol-Lattice/go-assistant"
)

// MongoStore persists transcripts in a MongoDB collection, one document per
// session.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoSession struct {
	SessionID string                       `bson:"_id"`
	Turns     []assistant.ConversationTurn `bson:"turns"`
	UpdatedAt time.Time                    `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses database/collection for session
// documents.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("history: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("history: mongo ping: %w", err)
	}
	if database == "" {
		database = "assistant"
	}
	if collection == "" {
		collection = "sessions"
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, sessionID string) ([]assistant.ConversationTurn, error) {
	var doc mongoSession
	err := s.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []assistant.ConversationTurn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: mongo load %s: %w", sessionID, err)
	}
	return doc.Turns, nil
}

func (s *MongoStore) Save(ctx context.Context, sessionID string, turns []assistant.ConversationTurn) error {
	doc := mongoSession{SessionID: sessionID, Turns: turns, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, opts); err != nil {
		return fmt.Errorf("history: mongo save %s: %w", sessionID, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
