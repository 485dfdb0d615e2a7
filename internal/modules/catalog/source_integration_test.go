package catalog

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "towquote/internal/errors"
)

type store interface {
	Source
	Publisher
}

// roundTrip publishes the sample documents and loads them back through src.
func roundTrip(t *testing.T, src store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for name, body := range sampleDocs(t) {
		if err := src.Put(ctx, name, body); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}
	c, err := NewLoader(src).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Pricing.Keys(); len(got) != 2 || got[0] != "light_duty" {
		t.Errorf("tow types = %v, order not preserved", got)
	}
	if _, err := src.Document(ctx, "no_such_document"); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Errorf("missing document error = %v, want configuration error", err)
	}
}

func TestPostgresSource(t *testing.T) {
	dsn := os.Getenv("TOWQUOTE_TEST_DSN")
	if dsn == "" {
		t.Skip("TOWQUOTE_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS config_documents (
        name TEXT PRIMARY KEY,
        body JSON NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	roundTrip(t, NewPostgresSource(pool))
}

func TestRedisSource(t *testing.T) {
	addr := os.Getenv("TOWQUOTE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TOWQUOTE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	roundTrip(t, NewRedisSource(client, "towquote:test:"))
}

func TestMongoSource(t *testing.T) {
	uri := os.Getenv("TOWQUOTE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TOWQUOTE_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	roundTrip(t, NewMongoSource(client, "towquote_test", "config_documents"))
}

func TestFileSource_Put(t *testing.T) {
	roundTrip(t, NewFileSource(t.TempDir()))
}
