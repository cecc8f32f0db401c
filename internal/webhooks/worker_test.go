package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cargonav/internal/store"
)

func TestWorkerDeliversAndSigns(t *testing.T) {
	var gotSig, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotEvent = r.Header.Get("X-Event-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	m := store.NewMemory()
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1","type":"run.completed"}`)
	id, err := m.EnqueueWebhook(ctx, "sub1", "run.completed", srv.URL, "s3cret", payload)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	w := NewWorker(m)
	w.processOnce()

	if gotEvent != "run.completed" {
		t.Fatalf("event header = %q", gotEvent)
	}
	if !VerifyHMAC("s3cret", gotBody, gotSig) {
		t.Fatalf("signature did not verify")
	}
	if due, _ := m.FetchDueWebhookDeliveries(ctx, 10); len(due) != 0 {
		t.Fatalf("delivered item still due: %s", id)
	}
}

func TestWorkerRetriesWithBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	m := store.NewMemory()
	ctx := context.Background()
	if _, err := m.EnqueueWebhook(ctx, "sub1", "run.completed", srv.URL, "", []byte(`{}`)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	w := NewWorker(m)
	w.processOnce()

	// first failure books a retry in the future
	if due, _ := m.FetchDueWebhookDeliveries(ctx, 10); len(due) != 0 {
		t.Fatalf("failed delivery due immediately")
	}
}

func TestNextBackoffGrowsAndCaps(t *testing.T) {
	if nextBackoff(0) != time.Second {
		t.Fatalf("backoff(0) = %v", nextBackoff(0))
	}
	if nextBackoff(3) != 8*time.Second {
		t.Fatalf("backoff(3) = %v", nextBackoff(3))
	}
	if nextBackoff(100) != 17*time.Minute+4*time.Second {
		t.Fatalf("backoff(100) = %v", nextBackoff(100))
	}
}

func TestSignAndVerifyHMAC(t *testing.T) {
	body := []byte(`{"hello":"world"}`)
	sig := SignHMAC("secret", body)
	if !VerifyHMAC("secret", body, sig) {
		t.Fatalf("signature must verify")
	}
	if VerifyHMAC("other", body, sig) {
		t.Fatalf("wrong secret must not verify")
	}
	if VerifyHMAC("secret", []byte("tampered"), sig) {
		t.Fatalf("tampered body must not verify")
	}
}
