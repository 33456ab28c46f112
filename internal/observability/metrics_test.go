package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionOpened()
	m.SessionClosed()
	m.ObserveTransition("starting", "awaiting_answer")
	m.ObserveCall("evaluate", time.Second, nil)
	m.ObserveTranslation("hit")
	m.ObserveWSMessage("in", "hello")
}

func TestMetricsRecordAndExpose(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.ObserveCall("summarize", 20*time.Millisecond, errors.New("boom"))
	m.ObserveTranslation("miss")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var gauge float64
	var calls float64
	for _, mf := range families {
		switch mf.GetName() {
		case "test_interview_sessions_active":
			gauge = mf.GetMetric()[0].GetGauge().GetValue()
		case "test_collaborator_calls_total":
			for _, metric := range mf.GetMetric() {
				for _, label := range metric.GetLabel() {
					if label.GetName() == "outcome" && label.GetValue() == "error" {
						calls += metric.GetCounter().GetValue()
					}
				}
			}
		}
	}
	if gauge != 1 {
		t.Fatalf("expected 1 active session, got %v", gauge)
	}
	if calls != 1 {
		t.Fatalf("expected 1 failed call, got %v", calls)
	}

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_translation_lookups_total") {
		t.Fatalf("expected translation counter in exposition, got %s", rec.Body.String())
	}
}
