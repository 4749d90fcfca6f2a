package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PulseAtlas/internal/model"
)

func newTelegramTest(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewTelegramNotifier("tok", "chat-1", "")
	n.APIURL = srv.URL
	n.Backoff = 10 * time.Millisecond
	return n
}

func TestSend_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	n := newTelegramTest(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := n.Send(context.Background(), "alert"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestSend_ExhaustsRetries(t *testing.T) {
	n := newTelegramTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	n.MaxRetries = 1

	err := n.Send(context.Background(), "alert")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "attempts failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSend_PayloadShape(t *testing.T) {
	var gotPath string
	var payload map[string]string
	n := newTelegramTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	})

	if err := n.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if payload["chat_id"] != "chat-1" || payload["text"] != "hello" {
		t.Errorf("payload = %v", payload)
	}
}

func TestSend_CanceledContextStopsRetrying(t *testing.T) {
	n := newTelegramTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.Send(ctx, "alert"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFormatActions(t *testing.T) {
	msg := FormatActions([]model.Action{
		{Type: model.ActionInvestigate, Priority: 90, Title: "Exchange breach", URL: "https://x/b"},
		{Type: model.ActionMonitor, Priority: 50, Title: "Odd release"},
	})
	if !strings.Contains(msg, "1 new investigate action(s)") {
		t.Errorf("unexpected header: %q", msg)
	}
	if !strings.Contains(msg, "Exchange breach") || !strings.Contains(msg, "https://x/b") {
		t.Errorf("missing action line: %q", msg)
	}
	if strings.Contains(msg, "Odd release") {
		t.Errorf("monitor actions must not be included: %q", msg)
	}
}

func TestFormatActions_Empty(t *testing.T) {
	if msg := FormatActions(nil); msg != "" {
		t.Errorf("expected empty message, got %q", msg)
	}
	if msg := FormatActions([]model.Action{{Type: model.ActionMonitor}}); msg != "" {
		t.Errorf("monitor-only batch must produce no alert, got %q", msg)
	}
}
