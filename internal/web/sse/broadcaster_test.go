package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/testutil"
)

func TestBroadcaster_PublishEncodesEvent(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	b := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("SESSION00001")
	client := NewClient(hub, "viewer")
	hub.Register(client)
	waitForClients(t, hub, 1)

	b.Publish(model.Event{
		Type:      model.EventSpawnApplied,
		SessionID: "SESSION00001",
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload: model.SpawnAppliedPayload{
			Cycle:  3,
			Spawns: []model.SpawnEvent{{CellIndex: 2, Letter: 'e', Height: 1}},
		},
	})

	select {
	case msg := <-client.send:
		text := string(msg)
		if !strings.HasPrefix(text, "event: spawn_applied\ndata: ") {
			t.Fatalf("unexpected frame %q", text)
		}
		data := strings.TrimSuffix(strings.TrimPrefix(text, "event: spawn_applied\ndata: "), "\n\n")
		var decoded struct {
			Type      string `json:"type"`
			SessionID string `json:"session_id"`
			Payload   struct {
				Cycle  int `json:"cycle"`
				Spawns []struct {
					Cell   int    `json:"cell"`
					Letter string `json:"letter"`
				} `json:"spawns"`
			} `json:"payload"`
		}
		if err := json.Unmarshal([]byte(data), &decoded); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if decoded.Type != "spawn_applied" || decoded.SessionID != "SESSION00001" {
			t.Errorf("decoded header = %+v", decoded)
		}
		if decoded.Payload.Cycle != 3 || len(decoded.Payload.Spawns) != 1 || decoded.Payload.Spawns[0].Letter != "e" {
			t.Errorf("decoded payload = %+v", decoded.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
	}
}

func TestBroadcaster_PublishWithoutHubIsNoop(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	b := NewBroadcaster(manager, testutil.NopLogger())

	b.Publish(model.Event{Type: model.EventSessionWon, SessionID: "NOBODY"})

	if manager.GetHub("NOBODY") != nil {
		t.Error("Publish created a hub")
	}
}

func TestSnapshot(t *testing.T) {
	frame, err := Snapshot("snapshot", map[string]int{"cycle": 2})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if string(frame) != "event: snapshot\ndata: {\"cycle\":2}\n\n" {
		t.Errorf("Snapshot() = %q", string(frame))
	}
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	hub := manager.GetOrCreateHub("SESSION00001")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, r.RemoteAddr, formatSSEMessage("snapshot", "{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	waitForClients(t, hub, 1)
	hub.BroadcastEvent("session_lost", `{"reason":"ceiling"}`)

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, name)
			if name == "session_lost" {
				break
			}
		}
	}

	want := []string{"connected", "snapshot", "session_lost"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}
