package envbase

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is a single environment variable held in a backing store.
// Keys are stored in their canonical upper-case form.
type Entry struct {
	Key   string
	Value string
}

// Backend defines the interface for the four storage engines.
// This allows the same session code to work with MongoDB, PostgreSQL,
// SQLite, or Redis without caring which engine is behind it.
//
// All adapters normalize keys to upper case before touching the store, and
// all of them report a missing key from Get as ErrNotFound. Delete is
// deliberately asymmetric: the relational adapters fail with ErrNotFound
// when the key is absent, the document and cache adapters treat the same
// situation as a silent no-op. That asymmetry is part of the contract and
// is covered by the compliance tests.
type Backend interface {
	// Kind reports which engine this adapter drives
	Kind() BackendKind

	// EnsureSchema prepares the collection for use. Relational adapters
	// issue CREATE TABLE IF NOT EXISTS <name> (key TEXT PRIMARY KEY,
	// value TEXT); the document and cache adapters have nothing to do.
	EnsureSchema(ctx context.Context) error

	// LoadAll returns every entry in the collection in store-native order
	LoadAll(ctx context.Context) ([]Entry, error)

	// Get returns the value for a key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Put upserts a key. Writing an existing key replaces its value and
	// never errors.
	Put(ctx context.Context, key, value string) error

	// Update rewrites the value for a key, inserting it when absent
	Update(ctx context.Context, key, value string) error

	// Delete removes a key. Relational adapters return ErrNotFound when
	// the key does not exist; document and cache adapters return nil.
	Delete(ctx context.Context, key string) error

	// Ping checks connectivity to the store
	Ping(ctx context.Context) error

	// Close releases the connection. Adapters built from caller-supplied
	// handles leave those handles open.
	Close(ctx context.Context) error
}

// Open classifies a connection descriptor and connects the matching adapter.
//
// The descriptor is either a URL-ish string or a pre-built driver handle
// (*mongo.Client, *redis.Client, *pgx.Conn, *sql.DB). Adapters built from
// pre-built handles never close them; adapters built from strings own their
// connection and release it on Close.
//
//	backend, err := envbase.Open(ctx, "redis://localhost:6379/0", "app_config")
//	if err != nil { ... }
//	defer backend.Close(ctx)
func Open(ctx context.Context, descriptor interface{}, collection string) (Backend, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	kind, err := Classify(descriptor)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindDocument:
		if client, ok := descriptor.(*mongo.Client); ok {
			return NewMongoBackendFromClient(client, collection)
		}
		return NewMongoBackend(ctx, descriptor.(string), collection)

	case KindEmbeddedRelational:
		if db, ok := descriptor.(*sql.DB); ok {
			return NewSQLiteBackendFromDB(db, collection)
		}
		return NewSQLiteBackend(ctx, descriptor.(string), collection)

	case KindRemoteRelational:
		if conn, ok := descriptor.(*pgx.Conn); ok {
			return NewPostgresBackendFromConn(conn, collection)
		}
		return NewPostgresBackend(ctx, descriptor.(string), collection)

	case KindKeyValueCache:
		if client, ok := descriptor.(*redis.Client); ok {
			return NewRedisBackendFromClient(client, collection)
		}
		return NewRedisBackend(ctx, descriptor.(string), collection)

	default:
		return nil, ErrUnrecognizedBackend
	}
}
