package db

import (
	"context"
	"testing"
)

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect(context.Background(), Options{}, nil); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestCloseNilHandle(t *testing.T) {
	var pg *Postgres
	if err := pg.Close(); err != nil {
		t.Fatalf("close nil: %v", err)
	}
}
