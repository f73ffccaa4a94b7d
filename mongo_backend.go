package envbase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultMongoDatabase is the database that holds environment collections
// when the connection URL does not name one.
const DefaultMongoDatabase = "envbase"

// envDocument is the shape of a stored entry: one document per key.
type envDocument struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

// MongoBackend is the document-store adapter. Entries live as {key, value}
// documents in a single collection, with the key field unique per
// collection by way of upsert writes.
type MongoBackend struct {
	client     *mongo.Client
	coll       *mongo.Collection
	ownsClient bool // If true, Close() will disconnect the client
}

// NewMongoBackend dials the server at url and pings it. Any dial, auth, or
// ping failure is reported as an invalid descriptor with the driver cause
// attached.
func NewMongoBackend(ctx context.Context, url, collection string) (*MongoBackend, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, NewDescriptorError(url, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, NewDescriptorError(url, err)
	}

	return &MongoBackend{
		client:     client,
		coll:       client.Database(DefaultMongoDatabase).Collection(collection),
		ownsClient: true,
	}, nil
}

// NewMongoBackendFromClient wraps a caller-supplied client. The client is
// left connected when the backend is closed.
func NewMongoBackendFromClient(client *mongo.Client, collection string) (*MongoBackend, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	return &MongoBackend{
		client: client,
		coll:   client.Database(DefaultMongoDatabase).Collection(collection),
	}, nil
}

func (b *MongoBackend) Kind() BackendKind {
	return KindDocument
}

// EnsureSchema is a no-op: document collections spring into existence on
// first write.
func (b *MongoBackend) EnsureSchema(ctx context.Context) error {
	return nil
}

func (b *MongoBackend) LoadAll(ctx context.Context) ([]Entry, error) {
	cursor, err := b.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	for cursor.Next(ctx) {
		var doc envDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: doc.Key, Value: doc.Value})
	}
	return entries, cursor.Err()
}

func (b *MongoBackend) Get(ctx context.Context, key string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}

	var doc envDocument
	err = b.coll.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", WithContext(ErrNotFound, map[string]interface{}{
			"key":        key,
			"collection": b.coll.Name(),
		})
	}
	if err != nil {
		return "", err
	}
	return doc.Value, nil
}

func (b *MongoBackend) Put(ctx context.Context, key, value string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = b.coll.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	return err
}

// Update is an upsert like Put; document stores have no separate
// insert-on-absent branch to preserve.
func (b *MongoBackend) Update(ctx context.Context, key, value string) error {
	return b.Put(ctx, key, value)
}

// Delete removes a key. Deleting an absent key is a silent no-op, matching
// the driver's native DeleteOne semantics.
func (b *MongoBackend) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = b.coll.DeleteOne(ctx, bson.M{"key": key})
	return err
}

func (b *MongoBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *MongoBackend) Close(ctx context.Context) error {
	if !b.ownsClient {
		return nil
	}
	return b.client.Disconnect(ctx)
}
