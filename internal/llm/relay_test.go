package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRelayClientEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{"completion envelope", `{"choices":[{"message":{"content":"How severe is it?"}}]}`, http.StatusOK, "How severe is it?", false},
		{"text envelope", `{"text":"How severe is it?"}`, http.StatusOK, "How severe is it?", false},
		{"empty envelope", `{}`, http.StatusOK, "", true},
		{"not json", `upstream exploded`, http.StatusOK, "", true},
		{"http error", `{"text":"ignored"}`, http.StatusBadGateway, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewRelayClient(srv.URL).Complete(context.Background(), "prompt", nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelayClientRequestShape(t *testing.T) {
	var got relayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL)
	if _, err := client.Complete(context.Background(), "the prompt", []Message{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Prompt != "the prompt" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if len(got.ChatHistory) != 1 || got.ChatHistory[0].Content != "hi" {
		t.Errorf("history = %+v", got.ChatHistory)
	}

	// A nil history serializes as an empty array, never null.
	if _, err := client.Complete(context.Background(), "p", nil); err != nil {
		t.Fatalf("Complete with nil history: %v", err)
	}
	if got.ChatHistory == nil || len(got.ChatHistory) != 0 {
		t.Errorf("nil history should arrive as [], got %+v", got.ChatHistory)
	}
}

func TestScriptedClientReplay(t *testing.T) {
	c := NewScriptedClient("first", "second")
	for _, want := range []string{"first", "second", "second"} {
		got, err := c.Complete(context.Background(), "p", nil)
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if got != want {
			t.Errorf("reply = %q, want %q", got, want)
		}
	}
	if c.Calls() != 3 {
		t.Errorf("calls = %d, want 3", c.Calls())
	}

	c.Err = errors.New("down")
	if _, err := c.Complete(context.Background(), "p", nil); err == nil {
		t.Fatal("expected scripted error")
	}
}
