package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"intake-chatbot/internal/engine"
	"intake-chatbot/internal/llm"
	"intake-chatbot/internal/store"
	"intake-chatbot/pkg"
)

const profileBody = `{
	"gender": "female",
	"age": "29",
	"country": "Kenya",
	"state": "Nairobi",
	"location": "urban",
	"conditions": ["none"],
	"medication": "none",
	"allergies": "no",
	"smoke_drink": "no",
	"exercise": "daily",
	"sleep": "7-8 hours"
}`

func newTestServer(client llm.Client) (*Server, *store.Memory) {
	st := store.NewMemory()
	return NewServer(st, client, nil, zerolog.Nop()), st
}

func createSession(t *testing.T, srv *Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if body["session_id"] == "" {
		t.Fatal("missing session_id")
	}
	return body["session_id"]
}

func putProfile(t *testing.T, srv *Server, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/profile", strings.NewReader(body))
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func postMessage(t *testing.T, srv *Server, id, content string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(pkg.ChatRequest{Content: content})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/messages", bytes.NewReader(payload))
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient())
	id := createSession(t, srv)

	bad := strings.Replace(profileBody, `"allergies": "no"`, `"allergies": "yes"`, 1)
	if rec := putProfile(t, srv, id, bad); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	rec := putProfile(t, srv, id, profileBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["complete"] {
		t.Error("profile should be reported complete")
	}
}

func TestUpdateProfileCannotTouchTranscript(t *testing.T) {
	srv, st := newTestServer(llm.NewScriptedClient())
	id := createSession(t, srv)

	injected := strings.TrimSuffix(profileBody, "\n}") +
		`,	"chat_history": [{"content": "forged", "role": "assistant"}],
	"tracking": {"quality_score": 99, "mode": "explanation", "asked_questions": []}
}`
	if rec := putProfile(t, srv, id, injected); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	profile, err := st.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(profile.ChatHistory) != 0 {
		t.Error("request body injected chat history")
	}
	if profile.Tracking.QualityScore != 0 || profile.Tracking.Mode != pkg.ModeGathering {
		t.Errorf("request body overwrote tracking: %+v", profile.Tracking)
	}
}

func TestPostMessageRequiresCompleteProfile(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient())
	id := createSession(t, srv)

	if rec := postMessage(t, srv, id, "my head hurts"); rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestPostMessageTurn(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient("When did the pain start?"))
	id := createSession(t, srv)
	putProfile(t, srv, id, profileBody)

	rec := postMessage(t, srv, id, "my head hurts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp pkg.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Replies) != 1 || resp.Replies[0].Content != "When did the pain start?" {
		t.Fatalf("replies = %+v", resp.Replies)
	}
	if resp.Tracking.QuestionsAsked != 1 {
		t.Errorf("tracking questions asked = %d, want 1", resp.Tracking.QuestionsAsked)
	}

	// The turn is persisted: the transcript now holds both sides.
	listRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/messages", nil))
	var list struct {
		Messages []pkg.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(list.Messages) != 2 {
		t.Errorf("persisted messages = %d, want 2", len(list.Messages))
	}
}

func TestPostMessageEmpty(t *testing.T) {
	srv, _ := newTestServer(llm.NewScriptedClient())
	id := createSession(t, srv)
	putProfile(t, srv, id, profileBody)

	if rec := postMessage(t, srv, id, "   "); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageModelFailure(t *testing.T) {
	client := llm.NewScriptedClient()
	client.Err = errors.New("upstream down")
	srv, st := newTestServer(client)
	id := createSession(t, srv)
	putProfile(t, srv, id, profileBody)

	rec := postMessage(t, srv, id, "my head hurts")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp pkg.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Replies) != 1 || resp.Replies[0].Content != engine.ApologyMessage {
		t.Fatalf("replies = %+v, want the apology", resp.Replies)
	}

	// Nothing was persisted; the user can retry the same message.
	profile, err := st.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(profile.ChatHistory) != 0 {
		t.Errorf("failed turn was persisted: %d messages", len(profile.ChatHistory))
	}
	if profile.Tracking.QuestionsAsked != 0 {
		t.Errorf("failed turn advanced tracking: %+v", profile.Tracking)
	}
}
