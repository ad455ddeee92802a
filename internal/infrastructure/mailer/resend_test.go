package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("test-key", "Dashboard <alerts@example.com>", srv.URL)
	if err := client.Send(context.Background(), "user@example.com", "Alert", "<p>hi</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if got.From != "Dashboard <alerts@example.com>" {
		t.Errorf("unexpected from %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "user@example.com" {
		t.Errorf("unexpected recipients %v", got.To)
	}
	if got.Subject != "Alert" {
		t.Errorf("unexpected subject %q", got.Subject)
	}
}

func TestSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad-key", "", srv.URL)
	if err := client.Send(context.Background(), "user@example.com", "Alert", ""); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestDisabledClient(t *testing.T) {
	var nilClient *Client
	if nilClient.IsEnabled() {
		t.Error("nil client must be disabled")
	}

	client := NewClient("", "", "")
	if client.IsEnabled() {
		t.Error("keyless client must be disabled")
	}
	if err := client.Send(context.Background(), "user@example.com", "Alert", ""); err == nil {
		t.Error("disabled client must refuse to send")
	}
}
