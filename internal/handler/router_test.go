package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
	chatService "github.com/zhouzirui/career-guide/backend/internal/service/chat"
	profileService "github.com/zhouzirui/career-guide/backend/internal/service/profile"
)

func newTestRouter() http.Handler {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)
	metrics.SessionOpened()

	return NewRouter(Dependencies{
		Personas: persona.NewMemoryStore(persona.Seed()),
		Chat:     chatService.NewService(),
		Profiles: profileService.NewService("en", []string{"es"}, nil),
		Gatherer: reg,
	})
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "test_interview_sessions_active") {
		t.Fatalf("expected interview gauge in metrics output")
	}
}

func TestRouterWithoutAI(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stream/abc?message=hi", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/personas", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
