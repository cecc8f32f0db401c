//go:build postgres_integration

package store

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	ctx := t.Context()
	if err := p.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := p.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	run := Run{ID: uuid.NewString(), Kind: "optimize", Seed: 7, CreatedAt: time.Now().UTC()}
	if err := p.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := p.GetRun(ctx, run.ID)
	if err != nil || got.Kind != "optimize" || got.Seed != 7 {
		t.Fatalf("GetRun: %v %+v", err, got)
	}
	if _, err := p.ListRuns(ctx, "", 5); err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
}
