// Package main runs a demo WebSocket client for the live simulation feed.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	RunID   string          `json:"runId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const demoDataset = `{
  "scenario": "daily",
  "dataset": {
    "airports": [
      {"code": "LIM", "continent": "SAM", "storageCapacity": 1000, "utcOffset": -5},
      {"code": "BRU", "continent": "EUR", "storageCapacity": 1000, "utcOffset": 1}
    ],
    "flights": [
      {"code": "F1", "origin": "LIM", "destination": "BRU", "departure": "2025-10-01T12:00:00Z", "arrival": "2025-10-01T23:00:00Z", "capacity": 300}
    ],
    "orders": [
      {"id": 1, "quantity": 200, "origin": "LIM", "destination": "BRU", "orderTime": "2025-10-01T08:00:00Z"}
    ]
  }
}`

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect to the firehose before kicking off the run.
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/simulate/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1"}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger a simulation run.
	time.Sleep(500 * time.Millisecond)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/simulate", bytes.NewReader([]byte(demoDataset)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var run struct {
		ID      string         `json:"id"`
		Summary map[string]any `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		log.Fatal(err)
	}
	log.Printf("Run ID: %s", run.ID)

	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
