package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPClientGetGreeting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/greeting" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"greeting": "Hello!"})
	}))
	defer server.Close()

	greeting, err := NewHTTPClient(server.URL).GetGreeting(context.Background())
	if err != nil {
		t.Fatalf("GetGreeting err: %v", err)
	}
	if greeting != "Hello!" {
		t.Fatalf("greeting = %q", greeting)
	}
}

func TestHTTPClientHandleInitialResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/initial" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode err: %v", err)
		}
		if payload["message"] != "my wifi is slow" || payload["sessionId"] != "session-1" {
			t.Errorf("unexpected payload: %v", payload)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"response":        "Let me help.",
			"startDiagnostic": true,
			"firstQuestion": map[string]any{
				"question": "is your wifi router power led on?",
				"index":    0,
			},
		})
	}))
	defer server.Close()

	result, err := NewHTTPClient(server.URL).HandleInitialResponse(context.Background(), "my wifi is slow", "session-1")
	if err != nil {
		t.Fatalf("HandleInitialResponse err: %v", err)
	}
	if !result.StartDiagnostic || result.FirstQuestion == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FirstQuestion.Text == "" {
		t.Fatal("first question text missing")
	}
}

func TestHTTPClientAnswerQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/diagnostic/answer" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["answer"] != "yes" {
			t.Errorf("answer = %q", payload["answer"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"complete": false,
			"nextQuestion": map[string]any{
				"question": "next one",
				"index":    1,
			},
		})
	}))
	defer server.Close()

	result, err := NewHTTPClient(server.URL).AnswerQuestion(context.Background(), "session-1", "yes")
	if err != nil {
		t.Fatalf("AnswerQuestion err: %v", err)
	}
	if result.Complete || result.NextQuestion == nil || result.NextQuestion.Index != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPClientSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "diagnostic session not found"})
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL).AnswerQuestion(context.Background(), "missing", "yes")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPClientClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/message" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"reply": "YES", "model": "test"})
	}))
	defer server.Close()

	reply, err := NewHTTPClient(server.URL).Classify(context.Background(), "some prompt")
	if err != nil {
		t.Fatalf("Classify err: %v", err)
	}
	if reply != "YES" {
		t.Fatalf("reply = %q", reply)
	}
}
