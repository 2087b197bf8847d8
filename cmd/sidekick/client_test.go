package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAPIClientDefaults(t *testing.T) {
	client := NewAPIClient("", 0)
	if client.baseURL != "http://127.0.0.1:8127/api" {
		t.Errorf("Expected default baseURL http://127.0.0.1:8127/api, got %s", client.baseURL)
	}
	if client.client.Timeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %v", client.client.Timeout)
	}

	client = NewAPIClient("http://example.com/api", 5*time.Second)
	if client.baseURL != "http://example.com/api" {
		t.Errorf("Expected baseURL http://example.com/api, got %s", client.baseURL)
	}
}

func TestAPIClientIsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"READY"}`))
		}
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)
	if !client.IsReachable() {
		t.Error("Expected server to be reachable")
	}

	server404 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server404.Close()

	client = NewAPIClient(server404.URL, time.Second)
	if client.IsReachable() {
		t.Error("Expected server returning 404 to be unreachable")
	}
}

func TestAPIClientStatusAndReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "NOT_READY:PORT_IN_USE_NO_HEALTH"})
		case "/ready":
			_ = json.NewEncoder(w).Encode(map[string]bool{"ready": true})
		case "/base-url":
			_ = json.NewEncoder(w).Encode(map[string]string{"base_url": "http://127.0.0.1:8000"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)
	st, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st != "NOT_READY:PORT_IN_USE_NO_HEALTH" {
		t.Errorf("unexpected status %q", st)
	}
	ready, err := client.Ready()
	if err != nil || !ready {
		t.Fatalf("Ready: ready=%v err=%v", ready, err)
	}
	base, err := client.BaseURL()
	if err != nil || base != "http://127.0.0.1:8000" {
		t.Fatalf("BaseURL: base=%q err=%v", base, err)
	}
}

func TestAPIClientRetryAndKillRetry(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPaths = append(gotPaths, r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)
	if err := client.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := client.KillRetry(); err != nil {
		t.Fatalf("KillRetry: %v", err)
	}
	if len(gotPaths) != 2 || gotPaths[0] != "/backend/retry" || gotPaths[1] != "/backend/kill-retry" {
		t.Fatalf("unexpected paths: %v", gotPaths)
	}
}

func TestAPIClientLogSendsMessage(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)
	if err := client.Log("hello"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if got["message"] != "hello" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestAPIClientSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"scheduled task not supported"}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, time.Second)
	err := client.RunTask()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "API error: scheduled task not supported" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildRootRegistersSubcommands(t *testing.T) {
	root := buildRoot()
	want := []string{"run", "status", "retry", "kill-retry", "task", "logs", "log", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
