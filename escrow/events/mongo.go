package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/payflow/escrow/escrow/trading"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const emitTimeout = 5 * time.Second

// MongoSink appends emitted events to a MongoDB collection. Failures are
// logged and dropped; the producing operation has already committed.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoSink) Emit(ctx context.Context, evts ...trading.Event) {
	ctx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(evts))
	for _, evt := range evts {
		docs = append(docs, evt)
	}
	if len(docs) == 0 {
		return
	}

	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		slog.Error("Failed to store domain events",
			slog.String("type", "error"),
			slog.Int("count", len(docs)),
			slog.Any("error", err))
	}
}

func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
