package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cargonav/internal/dataset"
	"cargonav/internal/metrics"
	"cargonav/internal/model"
	"cargonav/internal/opt"
	"cargonav/internal/sim"
	"cargonav/internal/store"
)

// FirehoseChannel carries events for every simulation run, for clients
// that subscribe before a run ID exists.
const FirehoseChannel = "simulations"

// OptimizeHandler runs the engine once on an inline dataset.
// POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	if !s.authorized(r.Header.Get("Authorization")) {
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid request", err.Error(), r.URL.Path)
		return
	}
	data, err := dataset.Build(req.Dataset)
	if err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid dataset", err.Error(), r.URL.Path)
		return
	}

	cfg := engineConfig(&req)
	sol, stats := opt.NewEngine(cfg).Optimize(data.OrderList, data.FlightList, data.AirportList)

	metrics.OptimizeRuns.WithLabelValues("optimize").Inc()
	metrics.OptimizeIterations.Observe(float64(stats.Iterations))
	metrics.OptimizeDuration.Observe(stats.Elapsed.Seconds())
	observeMoves(stats)

	run := store.Run{
		ID:        uuid.NewString(),
		Kind:      "optimize",
		Seed:      cfg.Seed,
		CreatedAt: time.Now().UTC(),
		Stats:     stats,
		Solution:  solutionOut(sol, data.OrderList),
	}
	opt.RecordStats(run.ID, stats)
	if err := s.Store.SaveRun(r.Context(), run); err != nil {
		writeProblem(w, http.StatusInternalServerError, "persist failed", err.Error(), r.URL.Path)
		return
	}
	s.Pub.Emit(r.Context(), "run.completed", run)
	writeJSON(w, http.StatusOK, run)
}

// SimulateHandler runs the weekly harness, streaming day events through
// the broker while the run progresses.
// POST /v1/simulate
func (s *Server) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	if !s.authorized(r.Header.Get("Authorization")) {
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "", r.URL.Path)
		return
	}
	var req model.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSimulateRequest(&req); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid request", err.Error(), r.URL.Path)
		return
	}
	data, err := dataset.Build(req.Dataset)
	if err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid dataset", err.Error(), r.URL.Path)
		return
	}
	scenario, err := sim.Preset(req.Scenario)
	if err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid scenario", err.Error(), r.URL.Path)
		return
	}
	if req.Seed != 0 {
		scenario.Seed = req.Seed
	}
	if req.CancelProb > 0 {
		scenario.CancelProb = req.CancelProb
	}
	var start time.Time
	if req.StartDate != "" {
		if start, err = time.Parse(time.RFC3339, req.StartDate); err != nil {
			writeProblem(w, http.StatusUnprocessableEntity, "invalid startDate", err.Error(), r.URL.Path)
			return
		}
	}

	runID := uuid.NewString()
	h := scenario.Harness()
	h.OnDay = func(d sim.DayResult) {
		evt := SSEEvent{Type: "simulation.day", Data: map[string]any{
			"runId": runID, "day": d.Day, "flights": d.Flights, "cancelled": d.Cancelled,
			"delivered": d.Delivered, "skipped": d.Skipped,
		}}
		s.Broker.Publish(runID, evt)
		s.Broker.Publish(FirehoseChannel, evt)
		s.Status.Upsert(RunStatus{RunID: runID, State: "running", Day: d.Day, Delivered: d.Delivered, TS: time.Now().UTC().Format(time.RFC3339)})
	}

	summary := h.Run(data.OrderList, data.FlightList, data.AirportList, start)

	metrics.OptimizeRuns.WithLabelValues("simulate").Inc()
	metrics.DeliveredUnits.Add(float64(summary.Delivered))
	for _, d := range summary.Days {
		observeMoves(d.Stats)
	}
	if n := len(summary.Days); n > 0 {
		opt.RecordStats(runID, summary.Days[n-1].Stats)
	}

	run := store.Run{
		ID:        runID,
		Kind:      "simulate",
		Scenario:  scenario.Name,
		Seed:      scenario.Seed,
		CreatedAt: time.Now().UTC(),
		Summary:   summaryOut(summary),
	}
	if err := s.Store.SaveRun(r.Context(), run); err != nil {
		writeProblem(w, http.StatusInternalServerError, "persist failed", err.Error(), r.URL.Path)
		return
	}
	done := SSEEvent{Type: "simulation.completed", Data: map[string]any{"runId": runID, "delivered": summary.Delivered}}
	s.Broker.Publish(runID, done)
	s.Broker.Publish(FirehoseChannel, done)
	s.Status.Upsert(RunStatus{RunID: runID, State: "completed", Day: len(summary.Days) - 1, Delivered: summary.Delivered, TS: time.Now().UTC().Format(time.RFC3339)})
	s.Pub.Emit(r.Context(), "simulation.completed", run)
	writeJSON(w, http.StatusOK, run)
}

// RunsHandler lists persisted runs.
// GET /v1/runs?kind=&limit=
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.Store.ListRuns(r.Context(), r.URL.Query().Get("kind"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "list failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

// RunByIDHandler serves run detail, progress, and the SSE event stream.
// GET /v1/runs/{id}
// GET /v1/runs/{id}/status
// GET /v1/runs/{id}/events/stream
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "run id required", "", r.URL.Path)
		return
	}
	switch {
	case len(parts) == 1:
		run, err := s.Store.GetRun(r.Context(), id)
		if err == store.ErrNotFound {
			writeProblem(w, http.StatusNotFound, "run not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "get failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case len(parts) == 2 && parts[1] == "stats":
		st, ok := opt.GetStats(id)
		if !ok {
			writeProblem(w, http.StatusNotFound, "no stats", "", r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case len(parts) == 2 && parts[1] == "status":
		st, ok := s.Status.Get(id)
		if !ok {
			writeProblem(w, http.StatusNotFound, "no status", "", r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream":
		s.streamRunEvents(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "not found", "", r.URL.Path)
	}
}

func (s *Server) streamRunEvents(w http.ResponseWriter, r *http.Request, runID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.Broker.Subscribe(runID)
	defer s.Broker.Unsubscribe(runID, ch)
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(evt.Data)
			_, _ = w.Write([]byte("event: " + evt.Type + "\ndata: " + string(data) + "\n\n"))
			flusher.Flush()
		}
	}
}

// SubscriptionsHandler manages webhook subscriptions.
// POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if !s.authorized(r.Header.Get("Authorization")) {
			writeProblem(w, http.StatusUnauthorized, "unauthorized", "", r.URL.Path)
			return
		}
		var sub store.Subscription
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if sub.URL == "" {
			writeProblem(w, http.StatusUnprocessableEntity, "url required", "", r.URL.Path)
			return
		}
		created, err := s.Store.CreateSubscription(r.Context(), sub)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "create failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		subs, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "list failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": subs})
	default:
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
	}
}

// SubscriptionByIDHandler deletes one subscription.
// DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	if !s.authorized(r.Header.Get("Authorization")) {
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "", r.URL.Path)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		if err == store.ErrNotFound {
			writeProblem(w, http.StatusNotFound, "subscription not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "delete failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "store unavailable", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func engineConfig(req *model.OptimizeRequest) opt.Config {
	cfg := opt.DefaultConfig()
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.MaxIterations > 0 {
		cfg.MaxIterations = req.MaxIterations
	}
	if req.Patience > 0 {
		cfg.Patience = req.Patience
	}
	if req.TabuTenure > 0 {
		cfg.TabuTenure = req.TabuTenure
	}
	if len(req.ScoreWeights) == 3 {
		cfg.Score = opt.ScoreWeights{Utilization: req.ScoreWeights[0], Deadline: req.ScoreWeights[1], Departure: req.ScoreWeights[2]}
	}
	if req.PerStopCost > 0 {
		cfg.PerStopCost = req.PerStopCost
	}
	return cfg
}

func observeMoves(stats opt.Stats) {
	for kind, n := range stats.MovesApplied {
		metrics.Moves.WithLabelValues(kind, "applied").Add(float64(n))
	}
	for kind, n := range stats.MovesRejected {
		metrics.Moves.WithLabelValues(kind, "rejected").Add(float64(n))
	}
}

func solutionOut(sol *model.Solution, orders []*model.Order) *model.SolutionOut {
	out := &model.SolutionOut{RouteCost: sol.RouteCost()}
	for _, sh := range sol.ActiveShipments() {
		item := model.ShipmentOut{
			ID: sh.ID, OrderID: sh.OrderID, Quantity: sh.Quantity,
			Route: sh.RouteDescription(), Stops: sh.Stops(), OnTime: sh.MeetsDeadline(),
		}
		if h, ok := sh.DeliveryHours(); ok {
			item.Hours = h
		}
		out.Shipments = append(out.Shipments, item)
	}
	for _, o := range orders {
		if sol.MissingQuantity(o) > 0 {
			out.IncompleteOrders = append(out.IncompleteOrders, o.ID)
		}
	}
	return out
}

func summaryOut(s sim.WeeklySummary) *model.WeeklySummaryOut {
	out := &model.WeeklySummaryOut{
		Delivered:        s.Delivered,
		AvgDeliveryHours: s.AvgDeliveryHours,
		Backlog:          s.Backlog,
	}
	for _, d := range s.Days {
		out.Days = append(out.Days, model.DayResultOut{
			Day: d.Day, Flights: d.Flights, Cancelled: d.Cancelled, Orders: d.Orders,
			Delivered: d.Delivered, AvgDeliveryHours: d.AvgDeliveryHours, Skipped: d.Skipped,
		})
	}
	return out
}
