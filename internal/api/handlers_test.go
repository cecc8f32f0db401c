package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargonav/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("API_KEY", "")
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func demoRequest() map[string]any {
	return map[string]any{
		"dataset": map[string]any{
			"airports": []map[string]any{
				{"code": "LIM", "continent": "SAM", "storageCapacity": 1000, "utcOffset": -5},
				{"code": "BRU", "continent": "EUR", "storageCapacity": 1000, "utcOffset": 1},
			},
			"flights": []map[string]any{
				{"code": "F1", "origin": "LIM", "destination": "BRU", "departure": "2025-10-01T12:00:00Z", "arrival": "2025-10-01T23:00:00Z", "capacity": 300},
			},
			"orders": []map[string]any{
				{"id": 1, "quantity": 200, "origin": "LIM", "destination": "BRU", "orderTime": "2025-10-01T08:00:00Z"},
			},
		},
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	h(rr, req)
	return rr
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestOptimizeEndToEnd(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", demoRequest())
	if rr.Code != 200 {
		t.Fatalf("optimize: %d %s", rr.Code, rr.Body.String())
	}
	var run store.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.ID == "" || run.Kind != "optimize" {
		t.Fatalf("bad run: %+v", run)
	}
	if run.Solution == nil || len(run.Solution.Shipments) == 0 {
		t.Fatalf("expected shipments in solution")
	}
	total := 0
	for _, sh := range run.Solution.Shipments {
		total += sh.Quantity
	}
	if total != 200 {
		t.Fatalf("assigned = %d, want 200", total)
	}

	// run persisted
	rr = httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get run: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID+"/stats", nil))
	if rr.Code != 200 {
		t.Fatalf("get stats: %d", rr.Code)
	}
}

func TestOptimizeRejectsBadDataset(t *testing.T) {
	s := newTestServer(t)
	req := demoRequest()
	req["dataset"].(map[string]any)["flights"] = []map[string]any{
		{"code": "F1", "origin": "LIM", "destination": "XXX", "departure": "2025-10-01T12:00:00Z", "arrival": "2025-10-01T23:00:00Z", "capacity": 300},
	}
	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rr.Code)
	}
}

func TestSimulateEndToEnd(t *testing.T) {
	s := newTestServer(t)
	req := demoRequest()
	req["scenario"] = "daily"
	rr := postJSON(t, s.SimulateHandler, "/v1/simulate", req)
	if rr.Code != 200 {
		t.Fatalf("simulate: %d %s", rr.Code, rr.Body.String())
	}
	var run store.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.Kind != "simulate" || run.Scenario != "daily" {
		t.Fatalf("bad run: %+v", run)
	}
	if run.Summary == nil || len(run.Summary.Days) != 1 {
		t.Fatalf("expected 1 day summary, got %+v", run.Summary)
	}
	if run.Summary.Delivered != 200 {
		t.Fatalf("delivered = %d, want 200", run.Summary.Delivered)
	}

	st, ok := s.Status.Get(run.ID)
	if !ok || st.State != "completed" {
		t.Fatalf("status = %+v ok=%v", st, ok)
	}
	rr = httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID+"/status", nil))
	if rr.Code != 200 {
		t.Fatalf("status endpoint: %d", rr.Code)
	}
}

func TestSimulateRejectsUnknownScenario(t *testing.T) {
	s := newTestServer(t)
	req := demoRequest()
	req["scenario"] = "meltdown"
	rr := postJSON(t, s.SimulateHandler, "/v1/simulate", req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rr.Code)
	}
}

func TestRunsList(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", demoRequest())
	if rr.Code != 200 {
		t.Fatalf("optimize: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.RunsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs?kind=optimize", nil))
	if rr.Code != 200 {
		t.Fatalf("runs list: %d", rr.Code)
	}
	var idx struct {
		Items []store.Run `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &idx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(idx.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(idx.Items))
	}
}

func TestSubscriptionsCRUD(t *testing.T) {
	s := newTestServer(t)
	rr := postJSON(t, s.SubscriptionsHandler, "/v1/subscriptions", map[string]any{
		"url": "https://example.com/hook", "eventType": "run.completed", "secret": "shh",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d", rr.Code)
	}
	var sub store.Subscription
	if err := json.Unmarshal(rr.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.ID == "" {
		t.Fatalf("missing subscription id")
	}

	rr = httptest.NewRecorder()
	s.SubscriptionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/subscriptions", nil))
	if rr.Code != 200 {
		t.Fatalf("list: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.SubscriptionByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.SubscriptionByIDHandler(rr, httptest.NewRequest(http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rr.Code)
	}
}

func TestAPIKeyEnforced(t *testing.T) {
	s := newTestServer(t)
	s.apiKey = "sekrit"

	rr := postJSON(t, s.OptimizeHandler, "/v1/optimize", demoRequest())
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no key: %d, want 401", rr.Code)
	}

	b, _ := json.Marshal(demoRequest())
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer sekrit")
	s.OptimizeHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("with key: %d", rr.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}
