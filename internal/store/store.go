package store

import (
	"context"
	"errors"
	"time"

	"cargonav/internal/model"
	"cargonav/internal/opt"
)

// Run is one persisted optimizer or simulation invocation.
type Run struct {
	ID        string                  `json:"id"`
	Kind      string                  `json:"kind"` // optimize or simulate
	Scenario  string                  `json:"scenario,omitempty"`
	Seed      int64                   `json:"seed"`
	CreatedAt time.Time               `json:"createdAt"`
	Stats     opt.Stats               `json:"stats"`
	Solution  *model.SolutionOut      `json:"solution,omitempty"`
	Summary   *model.WeeklySummaryOut `json:"summary,omitempty"`
}

// Subscription is a webhook target for run lifecycle events.
type Subscription struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Secret    string    `json:"secret,omitempty"`
	EventType string    `json:"eventType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence interface used by the API server.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, kind string, limit int) ([]Run, error)

	CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]Subscription, error)

	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error

	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
