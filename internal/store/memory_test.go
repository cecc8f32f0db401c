package store

import (
	"context"
	"testing"
	"time"

	"cargonav/internal/opt"
)

func TestMemoryRuns(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.GetRun(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	r1 := Run{ID: "r1", Kind: "optimize", CreatedAt: time.Now(), Stats: opt.Stats{DeliveredUnits: 10}}
	r2 := Run{ID: "r2", Kind: "simulate", CreatedAt: time.Now()}
	if err := m.SaveRun(ctx, r1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveRun(ctx, r2); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := m.GetRun(ctx, "r1")
	if err != nil || got.Stats.DeliveredUnits != 10 {
		t.Fatalf("get r1: %v %+v", err, got)
	}

	runs, err := m.ListRuns(ctx, "", 10)
	if err != nil || len(runs) != 2 {
		t.Fatalf("list: %v, %d runs", err, len(runs))
	}
	if runs[0].ID != "r2" {
		t.Fatalf("newest first, got %s", runs[0].ID)
	}
	runs, _ = m.ListRuns(ctx, "simulate", 10)
	if len(runs) != 1 || runs[0].ID != "r2" {
		t.Fatalf("kind filter: %+v", runs)
	}
}

func TestMemorySubscriptions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sub, err := m.CreateSubscription(ctx, Subscription{URL: "http://example.test/hook", EventType: "run.completed"})
	if err != nil || sub.ID == "" {
		t.Fatalf("create: %v %+v", err, sub)
	}
	all, _ := m.GetSubscriptionsForEvent(ctx, "run.completed")
	if len(all) != 1 {
		t.Fatalf("matching subs = %d", len(all))
	}
	none, _ := m.GetSubscriptionsForEvent(ctx, "run.failed")
	if len(none) != 0 {
		t.Fatalf("non-matching subs = %d", len(none))
	}
	if err := m.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteSubscription(ctx, sub.ID); err != ErrNotFound {
		t.Fatalf("double delete: %v", err)
	}
}

func TestMemoryWebhookQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.EnqueueWebhook(ctx, "sub1", "run.completed", "http://example.test", "s3cret", []byte(`{}`))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	due, _ := m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 || due[0].ID != id {
		t.Fatalf("due = %+v", due)
	}

	later := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(ctx, id, false, &later, "boom", 500, 12); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if due, _ = m.FetchDueWebhookDeliveries(ctx, 10); len(due) != 0 {
		t.Fatalf("retry must wait for backoff, due = %d", len(due))
	}

	if err := m.FailWebhookDelivery(ctx, id, "gave up", 500, 9); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if due, _ = m.FetchDueWebhookDeliveries(ctx, 10); len(due) != 0 {
		t.Fatalf("failed delivery must not be due")
	}
}
