package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/career-guide/backend/internal/model/chat"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/career-guide/backend/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	store := persona.NewMemoryStore(persona.Seed())
	handler := New(chatSvc, store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSessionValidPersona(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"userId": "u1", "personaId": "career-guide"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session chat.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.UserID != "u1" || session.PersonaID != "career-guide" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCreateSessionRejectsInterviewer(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"personaId": "pm-interviewer"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"personaId": "non-existent"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionMissingPersonaID(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(r, http.MethodPost, "/session", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSaveMessageAndTranscript(t *testing.T) {
	r, chatSvc := setupRouter()

	session, err := chatSvc.CreateSession(context.Background(), "u1", "career-guide")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	resp := doJSON(r, http.MethodPost, "/messages", map[string]string{
		"sessionId": session.ID,
		"sender":    chat.SenderUser,
		"content":   "How do I move into product management?",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+session.ID+"/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var messages []chat.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(messages) != 1 || messages[0].ID == "" {
		t.Fatalf("unexpected transcript %+v", messages)
	}
}

func TestSaveMessageErrors(t *testing.T) {
	r, chatSvc := setupRouter()
	session, _ := chatSvc.CreateSession(context.Background(), "", "career-guide")

	cases := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"unknown session", map[string]string{"sessionId": "missing", "sender": "user", "content": "hi"}, http.StatusNotFound},
		{"bad sender", map[string]string{"sessionId": session.ID, "sender": "robot", "content": "hi"}, http.StatusBadRequest},
		{"empty content", map[string]string{"sessionId": session.ID, "sender": "user", "content": "  "}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(r, http.MethodPost, "/messages", tc.body)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestListSessionsRequiresUser(t *testing.T) {
	r, chatSvc := setupRouter()
	if _, err := chatSvc.CreateSession(context.Background(), "u1", "career-guide"); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions?userId=u1", nil))
	var sessions []chat.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
}
