package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB connects to the test MongoDB instance and returns a database
// unique to this test, dropped automatically at cleanup. Tests are skipped
// when no MongoDB is reachable, so the unit suite still runs without one.
//
// Set MONGO_TEST_URI to point at a non-default instance
// (default mongodb://localhost:27017).
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongodb unavailable at %s: %v", uri, err)
	}

	// One database per test so parallel tests cannot collide.
	db := client.Database(fmt.Sprintf("billtrack_test_%s", primitive.NewObjectID().Hex()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("failed to drop test database: %v", err)
		}
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a timeout generous enough for any
// single test's DB work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
