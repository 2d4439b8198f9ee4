package recordstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const mongoCollection = "collections"

type mongoDoc struct {
	Name string `bson:"_id"`
	Data string `bson:"data"`
}

// MongoBackend keeps each collection as one document keyed by name. The
// encoded collection is stored verbatim so every backend returns identical
// bytes for identical saves.
type MongoBackend struct {
	client     *mongo.Client
	Collection *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoBackend, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	b := &MongoBackend{
		client:     client,
		Collection: client.Database(database).Collection(mongoCollection),
	}
	if err := b.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return b, nil
}

func (b *MongoBackend) Read(ctx context.Context, name string) ([]byte, bool, error) {
	var doc mongoDoc

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return b.Collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Data), true, nil
}

func (b *MongoBackend) Write(ctx context.Context, name string, data []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := b.Collection.ReplaceOne(ctx,
			bson.M{"_id": name},
			mongoDoc{Name: name, Data: string(data)},
			options.Replace().SetUpsert(true),
		)
		return err
	})
}

func (b *MongoBackend) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return b.client.Ping(ctx, readpref.Primary())
	})
}

func (b *MongoBackend) Close() error {
	return b.client.Disconnect(context.Background())
}
