package envbase

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// BackendKind identifies which of the four storage engines a connection
// descriptor resolves to.
type BackendKind int

const (
	// KindUnknown is the zero value, returned alongside ErrUnrecognizedBackend
	KindUnknown BackendKind = iota

	// KindDocument is a MongoDB-style document store
	KindDocument

	// KindEmbeddedRelational is a local file-based SQLite database
	KindEmbeddedRelational

	// KindRemoteRelational is a PostgreSQL server
	KindRemoteRelational

	// KindKeyValueCache is a Redis-style key-value cache server
	KindKeyValueCache
)

func (k BackendKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindEmbeddedRelational:
		return "embedded-relational"
	case KindRemoteRelational:
		return "remote-relational"
	case KindKeyValueCache:
		return "key-value-cache"
	default:
		return "unknown"
	}
}

// Classify resolves a connection descriptor to a backend kind without
// performing any I/O. Descriptors are either URL-ish strings or pre-built
// driver handles.
//
// Typed handles are checked first:
//   - *mongo.Client → document
//   - *redis.Client → key-value cache
//   - *pgx.Conn    → remote relational
//   - *sql.DB      → embedded relational
//
// String descriptors are matched in a fixed order. A local SQLite path
// carries no scheme, so the file-extension rule runs before the relational
// prefix rules:
//  1. "mongodb://" or "mongodb+srv://" prefix → document
//  2. ".db", ".sqlite", ".sqlite3" suffix → embedded relational
//  3. "postgres://" or "postgresql://" prefix → remote relational
//  4. "redis://" or "rediss://" prefix → key-value cache
//
// Anything else fails with ErrUnrecognizedBackend.
func Classify(descriptor interface{}) (BackendKind, error) {
	switch d := descriptor.(type) {
	case *mongo.Client:
		return KindDocument, nil
	case *redis.Client:
		return KindKeyValueCache, nil
	case *pgx.Conn:
		return KindRemoteRelational, nil
	case *sql.DB:
		// database/sql handles cannot reveal their driver; the embedded
		// engine is the only database/sql adapter, so they classify there.
		return KindEmbeddedRelational, nil
	case string:
		return classifyString(d)
	case nil:
		return KindUnknown, WithContext(ErrUnrecognizedBackend, map[string]interface{}{
			"reason": "descriptor is nil",
		})
	default:
		return KindUnknown, WithContext(ErrUnrecognizedBackend, map[string]interface{}{
			"descriptor_type": fmt.Sprintf("%T", descriptor),
			"reason":          "unsupported descriptor type",
		})
	}
}

func classifyString(descriptor string) (BackendKind, error) {
	switch {
	case strings.HasPrefix(descriptor, "mongodb://"),
		strings.HasPrefix(descriptor, "mongodb+srv://"):
		return KindDocument, nil
	case strings.HasSuffix(descriptor, ".db"),
		strings.HasSuffix(descriptor, ".sqlite"),
		strings.HasSuffix(descriptor, ".sqlite3"):
		return KindEmbeddedRelational, nil
	case strings.HasPrefix(descriptor, "postgres://"),
		strings.HasPrefix(descriptor, "postgresql://"):
		return KindRemoteRelational, nil
	case strings.HasPrefix(descriptor, "redis://"),
		strings.HasPrefix(descriptor, "rediss://"):
		return KindKeyValueCache, nil
	default:
		return KindUnknown, WithContext(ErrUnrecognizedBackend, map[string]interface{}{
			"descriptor": descriptor,
		})
	}
}
