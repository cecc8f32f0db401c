package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"cargonav/internal/model"
	"cargonav/internal/opt"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Migrate creates the schema. Dev helper; production runs migrations
// out of band.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
    id          uuid PRIMARY KEY,
    kind        text NOT NULL,
    scenario    text NOT NULL DEFAULT '',
    seed        bigint NOT NULL DEFAULT 0,
    created_at  timestamptz NOT NULL DEFAULT now(),
    stats       jsonb NOT NULL DEFAULT '{}',
    solution    jsonb,
    summary     jsonb
);
CREATE TABLE IF NOT EXISTS subscriptions (
    id          uuid PRIMARY KEY,
    url         text NOT NULL,
    secret      text NOT NULL DEFAULT '',
    event_type  text NOT NULL DEFAULT '',
    created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS webhook_deliveries (
    id              uuid PRIMARY KEY,
    subscription_id uuid NOT NULL,
    event_type      text NOT NULL,
    url             text NOT NULL,
    secret          text NOT NULL DEFAULT '',
    payload         bytea NOT NULL,
    status          text NOT NULL DEFAULT 'pending',
    attempts        int NOT NULL DEFAULT 0,
    next_attempt_at timestamptz NOT NULL DEFAULT now(),
    last_error      text NOT NULL DEFAULT '',
    response_code   int NOT NULL DEFAULT 0,
    latency_ms      int NOT NULL DEFAULT 0,
    delivered_at    timestamptz
);
CREATE INDEX IF NOT EXISTS webhook_deliveries_due
    ON webhook_deliveries (next_attempt_at) WHERE status = 'pending';
`)
	return err
}

func (p *Postgres) SaveRun(ctx context.Context, run Run) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return err
	}
	solution := toJSONB(run.Solution)
	summary := toJSONB(run.Summary)
	_, err = p.db.ExecContext(ctx, `
INSERT INTO runs (id, kind, scenario, seed, created_at, stats, solution, summary)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET stats=EXCLUDED.stats, solution=EXCLUDED.solution, summary=EXCLUDED.summary`,
		run.ID, run.Kind, run.Scenario, run.Seed, run.CreatedAt, stats, solution, summary)
	return err
}

func (p *Postgres) GetRun(ctx context.Context, id string) (Run, error) {
	row := p.db.QueryRowContext(ctx, `
SELECT id::text, kind, scenario, seed, created_at, stats, solution, summary FROM runs WHERE id=$1`, id)
	return scanRun(row)
}

func (p *Postgres) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
SELECT id::text, kind, scenario, seed, created_at, stats, solution, summary FROM runs
WHERE ($1 = '' OR kind = $1) ORDER BY created_at DESC LIMIT $2`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var stats []byte
	var solution, summary sql.Null[[]byte]
	err := row.Scan(&run.ID, &run.Kind, &run.Scenario, &run.Seed, &run.CreatedAt, &stats, &solution, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal(stats, &run.Stats); err != nil {
		run.Stats = opt.Stats{}
	}
	if solution.Valid {
		var s model.SolutionOut
		if json.Unmarshal(solution.V, &s) == nil {
			run.Solution = &s
		}
	}
	if summary.Valid {
		var s model.WeeklySummaryOut
		if json.Unmarshal(summary.V, &s) == nil {
			run.Summary = &s
		}
	}
	return run, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.CreatedAt = time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
INSERT INTO subscriptions (id, url, secret, event_type, created_at) VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.URL, sub.Secret, sub.EventType, sub.CreatedAt)
	return sub, err
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT id::text, url, secret, event_type, created_at FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subscription{}
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.URL, &s.Secret, &s.EventType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT id::text, url, secret, event_type, created_at FROM subscriptions
WHERE event_type = '' OR event_type = $1`, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subscription{}
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.URL, &s.Secret, &s.EventType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload)
VALUES ($1,$2,$3,$4,$5,$6)`, id, subscriptionID, eventType, url, secret, payload)
	return id, err
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT id::text, subscription_id::text, event_type, url, secret, payload, status, attempts
FROM webhook_deliveries
WHERE status='pending' AND next_attempt_at <= now()
ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WebhookDelivery{}
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx, `
UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1, last_error=$2,
       response_code=$3, latency_ms=$4, delivered_at=now() WHERE id=$1`,
			id, lastError, responseCode, latencyMs)
		return err
	}
	_, err := p.db.ExecContext(ctx, `
UPDATE webhook_deliveries SET attempts=attempts+1, next_attempt_at=COALESCE($2, next_attempt_at),
       last_error=$3, response_code=$4, latency_ms=$5 WHERE id=$1`,
		id, nextAttemptAt, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode, latencyMs int) error {
	_, err := p.db.ExecContext(ctx, `
UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$2,
       response_code=$3, latency_ms=$4 WHERE id=$1`, id, lastError, responseCode, latencyMs)
	return err
}

func toJSONB(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case *model.SolutionOut:
		if t == nil {
			return nil
		}
	case *model.WeeklySummaryOut:
		if t == nil {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
