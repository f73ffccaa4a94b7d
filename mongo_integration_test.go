package envbase

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestIntegration_MongoBackend validates the document adapter against a
// real MongoDB server.
//
// Requires a reachable server:
//
//	docker run -d -p 27017:27017 mongo:7
//	TEST_MONGO_URL=mongodb://localhost:27017 go test -run TestIntegration_MongoBackend -v
func TestIntegration_MongoBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Mongo integration test in short mode")
	}

	url := os.Getenv("TEST_MONGO_URL")
	if url == "" {
		t.Skip("Set TEST_MONGO_URL to run Mongo integration tests")
	}

	ctx := context.Background()
	collection := "cfg_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	backend, err := NewMongoBackend(ctx, url, collection)
	if err != nil {
		t.Fatalf("NewMongoBackend: %v", err)
	}
	t.Cleanup(func() {
		backend.coll.Drop(ctx)
		backend.Close(ctx)
	})

	if backend.Kind() != KindDocument {
		t.Fatalf("Kind = %v, want %v", backend.Kind(), KindDocument)
	}

	runBackendCompliance(t, ctx, backend)

	// A caller-supplied client stays connected after the backend closes
	t.Run("FromClientOwnership", func(t *testing.T) {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
		if err != nil {
			t.Fatalf("mongo.Connect: %v", err)
		}
		defer client.Disconnect(ctx)

		shared, err := NewMongoBackendFromClient(client, collection)
		if err != nil {
			t.Fatalf("NewMongoBackendFromClient: %v", err)
		}
		if err := shared.Put(ctx, "owned", "no"); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := shared.Close(ctx); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := shared.Ping(ctx); err != nil {
			t.Errorf("client disconnected by backend: %v", err)
		}
	})
}
