package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientTest(t *testing.T) (*RedisClient, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewRedisClient(rdb), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisClientSetGetColumns(t *testing.T) {
	client, _, done := newRedisClientTest(t)
	defer done()
	ctx := context.Background()

	var rowKey [16]byte
	rowKey[0] = 1

	columns := map[string][]byte{
		"type":    []byte("access"),
		"created": []byte("123"),
	}

	if err := client.SetColumns(ctx, "auth", "tokens", rowKey, columns, time.Hour); err != nil {
		t.Fatalf("SetColumns: %v", err)
	}

	got, err := client.GetColumns(ctx, "auth", "tokens", rowKey, []string{"type", "created", "missing"})
	if err != nil {
		t.Fatalf("GetColumns: %v", err)
	}

	if string(got["type"]) != "access" {
		t.Fatalf("got type = %q, want access", got["type"])
	}
	if string(got["created"]) != "123" {
		t.Fatalf("got created = %q, want 123", got["created"])
	}
	if _, ok := got["missing"]; ok {
		t.Fatal("expected missing column to be absent from result")
	}
}

func TestRedisClientColumnExpires(t *testing.T) {
	client, mr, done := newRedisClientTest(t)
	defer done()
	ctx := context.Background()

	var rowKey [16]byte
	rowKey[0] = 2

	if err := client.SetColumns(ctx, "auth", "tokens", rowKey, map[string][]byte{"accessed": []byte("1")}, time.Millisecond); err != nil {
		t.Fatalf("SetColumns: %v", err)
	}

	mr.FastForward(20 * time.Millisecond)

	got, err := client.GetColumns(ctx, "auth", "tokens", rowKey, []string{"accessed"})
	if err != nil {
		t.Fatalf("GetColumns: %v", err)
	}
	if _, ok := got["accessed"]; ok {
		t.Fatal("expected expired column to be absent")
	}
}

func TestRedisClientSetColumnsEmptyIsNoop(t *testing.T) {
	client, _, done := newRedisClientTest(t)
	defer done()
	ctx := context.Background()

	var rowKey [16]byte
	if err := client.SetColumns(ctx, "auth", "tokens", rowKey, nil, time.Hour); err != nil {
		t.Fatalf("SetColumns with no columns: %v", err)
	}
}
