package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryClientSetGetColumns(t *testing.T) {
	client := NewMemoryClient()
	ctx := context.Background()

	var rowKey [16]byte
	rowKey[0] = 9

	columns := map[string][]byte{"type": []byte("refresh")}
	if err := client.SetColumns(ctx, "auth", "tokens", rowKey, columns, time.Hour); err != nil {
		t.Fatalf("SetColumns: %v", err)
	}

	got, err := client.GetColumns(ctx, "auth", "tokens", rowKey, []string{"type", "absent"})
	if err != nil {
		t.Fatalf("GetColumns: %v", err)
	}
	if string(got["type"]) != "refresh" {
		t.Fatalf("got type = %q", got["type"])
	}
	if _, ok := got["absent"]; ok {
		t.Fatal("expected absent column to be missing")
	}
}

func TestMemoryClientExpires(t *testing.T) {
	client := NewMemoryClient()
	fixedNow := time.Now()
	client.now = func() time.Time { return fixedNow }

	ctx := context.Background()
	var rowKey [16]byte

	if err := client.SetColumns(ctx, "auth", "tokens", rowKey, map[string][]byte{"accessed": []byte("1")}, time.Second); err != nil {
		t.Fatalf("SetColumns: %v", err)
	}

	client.now = func() time.Time { return fixedNow.Add(2 * time.Second) }

	got, err := client.GetColumns(ctx, "auth", "tokens", rowKey, []string{"accessed"})
	if err != nil {
		t.Fatalf("GetColumns: %v", err)
	}
	if _, ok := got["accessed"]; ok {
		t.Fatal("expected expired column to be absent")
	}
}

func TestMemoryClientIndependentRows(t *testing.T) {
	client := NewMemoryClient()
	ctx := context.Background()

	var rowA, rowB [16]byte
	rowA[0] = 1
	rowB[0] = 2

	client.SetColumns(ctx, "auth", "tokens", rowA, map[string][]byte{"type": []byte("a")}, time.Hour)
	client.SetColumns(ctx, "auth", "tokens", rowB, map[string][]byte{"type": []byte("b")}, time.Hour)

	gotA, _ := client.GetColumns(ctx, "auth", "tokens", rowA, []string{"type"})
	gotB, _ := client.GetColumns(ctx, "auth", "tokens", rowB, []string{"type"})

	if string(gotA["type"]) != "a" || string(gotB["type"]) != "b" {
		t.Fatalf("rows bled into each other: %q %q", gotA["type"], gotB["type"])
	}
}
