package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parley/internal/catalog"
	"parley/internal/llm"

	"github.com/gorilla/websocket"
)

type scriptedGenerator struct {
	complete   func(ctx context.Context, messages []llm.Message) (string, error)
	structured func(ctx context.Context, messages []llm.Message, format llm.ResponseFormat) (json.RawMessage, error)
}

func (g *scriptedGenerator) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if g.complete == nil {
		return "ok", nil
	}
	return g.complete(ctx, messages)
}

func (g *scriptedGenerator) CompleteStructured(ctx context.Context, messages []llm.Message, format llm.ResponseFormat) (json.RawMessage, error) {
	if g.structured == nil {
		return nil, errors.New("no structured script")
	}
	return g.structured(ctx, messages, format)
}

func happyGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		complete: func(ctx context.Context, messages []llm.Message) (string, error) {
			if strings.HasPrefix(messages[0].Content, "You are Alex Chen") {
				return "Please share your best quote.", nil
			}
			return "We can do $16.20 per unit.", nil
		},
		structured: func(ctx context.Context, messages []llm.Message, format llm.ResponseFormat) (json.RawMessage, error) {
			return json.RawMessage(`{
				"winner_supplier_id": 2,
				"winner_name": "Supplier B",
				"reasoning": "best balance",
				"comparison": [
					{"supplier_name": "Supplier A", "cost_assessment": "low", "quality_assessment": "good", "lead_time_assessment": "slow", "payment_terms_assessment": "flexible", "overall_score": "7/10"},
					{"supplier_name": "Supplier B", "cost_assessment": "mid", "quality_assessment": "best", "lead_time_assessment": "fast", "payment_terms_assessment": "standard", "overall_score": "9/10"},
					{"supplier_name": "Supplier C", "cost_assessment": "high", "quality_assessment": "good", "lead_time_assessment": "fastest", "payment_terms_assessment": "standard", "overall_score": "6/10"}
				]
			}`), nil
		},
	}
}

func testCatalogStore(t *testing.T) *catalog.Store {
	t.Helper()
	return catalog.NewStore(catalog.DefaultSuppliers(), catalog.DefaultProducts(), nil)
}

func startNegotiateServer(t *testing.T, handler *NegotiateHandler) *websocket.Conn {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping websocket test (listener unavailable): %v", err)
	}
	server := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	server.Start()
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/negotiate"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvents(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()
	var events []map[string]any
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var payload map[string]any
		if err := conn.ReadJSON(&payload); err != nil {
			return events
		}
		events = append(events, payload)
		kind, _ := payload["type"].(string)
		if kind == "done" || kind == "error" {
			return events
		}
	}
}

func TestNegotiateFullSession(t *testing.T) {
	conn := startNegotiateServer(t, &NegotiateHandler{
		Catalog:   testCatalogStore(t),
		Generator: happyGenerator(),
		Rounds:    3,
	})

	start := map[string]any{
		"type":       "start_negotiation",
		"quantities": map[string]int{"US-RUN-01": 10000},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start command: %v", err)
	}

	events := readEvents(t, conn)

	var messages, decisions, dones, errorsSeen int
	seenRoles := map[float64]map[string]bool{}
	decisionIndex, doneIndex := -1, -1
	for i, payload := range events {
		switch payload["type"] {
		case "message":
			messages++
			id, _ := payload["supplier_id"].(float64)
			role, _ := payload["role"].(string)
			if seenRoles[id] == nil {
				seenRoles[id] = map[string]bool{}
			}
			seenRoles[id][role] = true
			if _, ok := payload["round"].(float64); !ok {
				t.Fatalf("message event missing round: %v", payload)
			}
		case "decision":
			decisions++
			decisionIndex = i
			comparison, _ := payload["comparison"].(map[string]any)
			if len(comparison) != 3 {
				t.Fatalf("expected 3 comparison entries, got %v", payload["comparison"])
			}
			if winner, _ := payload["winner_supplier_id"].(float64); winner != 2 {
				t.Fatalf("expected winner 2, got %v", payload["winner_supplier_id"])
			}
		case "done":
			dones++
			doneIndex = i
		case "error":
			errorsSeen++
		}
	}

	if messages != 18 {
		t.Fatalf("expected 18 message events, got %d", messages)
	}
	for _, id := range []float64{1, 2, 3} {
		if !seenRoles[id]["brand"] || !seenRoles[id]["supplier"] {
			t.Fatalf("supplier %v missing a role: %v", id, seenRoles[id])
		}
	}
	if decisions != 1 || dones != 1 || errorsSeen != 0 {
		t.Fatalf("unexpected terminal counts: %d decisions, %d dones, %d errors", decisions, dones, errorsSeen)
	}
	if decisionIndex >= doneIndex {
		t.Fatalf("decision (%d) must precede done (%d)", decisionIndex, doneIndex)
	}
}

func TestNegotiateRejectsBogusStart(t *testing.T) {
	conn := startNegotiateServer(t, &NegotiateHandler{
		Catalog:   testCatalogStore(t),
		Generator: happyGenerator(),
	})

	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write start command: %v", err)
	}

	events := readEvents(t, conn)
	if len(events) != 1 {
		t.Fatalf("expected a single error event, got %d events: %v", len(events), events)
	}
	if events[0]["type"] != "error" {
		t.Fatalf("expected error event, got %v", events[0])
	}
	message, _ := events[0]["message"].(string)
	if !strings.Contains(message, "bogus") {
		t.Fatalf("error should name the rejected type: %q", message)
	}
}

func TestNegotiateRejectsUnknownProduct(t *testing.T) {
	conn := startNegotiateServer(t, &NegotiateHandler{
		Catalog:   testCatalogStore(t),
		Generator: happyGenerator(),
	})

	start := map[string]any{
		"type":       "start_negotiation",
		"quantities": map[string]int{"NO-SUCH-SKU": 100},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start command: %v", err)
	}

	events := readEvents(t, conn)
	if len(events) != 1 || events[0]["type"] != "error" {
		t.Fatalf("expected a single error event, got %v", events)
	}
}

func TestNegotiateCapabilityFailure(t *testing.T) {
	generator := happyGenerator()
	generator.complete = func(ctx context.Context, messages []llm.Message) (string, error) {
		// Supplier B's round-2 reply: supplier view holds system + 3 turns.
		if strings.HasPrefix(messages[0].Content, "You are Supplier B") && len(messages) == 4 {
			return "", errors.New("provider unavailable")
		}
		if strings.HasPrefix(messages[0].Content, "You are Alex Chen") {
			return "Brand follow-up.", nil
		}
		return "Supplier reply with $16.20.", nil
	}

	conn := startNegotiateServer(t, &NegotiateHandler{
		Catalog:   testCatalogStore(t),
		Generator: generator,
		Rounds:    3,
	})

	start := map[string]any{
		"type":       "start_negotiation",
		"quantities": map[string]int{"US-RUN-01": 10000},
	}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("write start command: %v", err)
	}

	events := readEvents(t, conn)

	var errorsSeen, decisions, dones int
	for _, payload := range events {
		switch payload["type"] {
		case "error":
			errorsSeen++
		case "decision":
			decisions++
		case "done":
			dones++
		}
	}
	if errorsSeen != 1 {
		t.Fatalf("expected exactly one error event, got %d", errorsSeen)
	}
	if decisions != 0 || dones != 0 {
		t.Fatalf("aborted session must not decide: %d decisions, %d dones", decisions, dones)
	}
	if events[len(events)-1]["type"] != "error" {
		t.Fatalf("error must be the final event, got %v", events[len(events)-1])
	}
}

func TestNegotiateRequiresToken(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping websocket test (listener unavailable): %v", err)
	}
	server := &httptest.Server{
		Listener: listener,
		Config: &http.Server{Handler: &NegotiateHandler{
			Catalog:   testCatalogStore(t),
			Generator: happyGenerator(),
			AuthToken: "secret",
		}},
	}
	server.Start()
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/negotiate"
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("expected dial to fail without token")
	} else if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token=secret", nil)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	conn.Close()
}
