package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/career-guide/backend/internal/model/profile"
	profileservice "github.com/zhouzirui/career-guide/backend/internal/service/profile"
	"github.com/zhouzirui/career-guide/backend/internal/service/translation"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeSkills(_ context.Context, req profile.SkillRequest) (profile.SkillAnalysis, error) {
	return profile.SkillAnalysis{
		TargetRole: req.TargetRole,
		SkillGaps:  []profile.SkillGap{{Skill: "SQL", Reason: "metrics work"}},
	}, nil
}

type stubTranslator struct {
	fail bool
}

func (s stubTranslator) Translate(_ context.Context, text, language string) (string, error) {
	if s.fail {
		return "", errors.New("offline")
	}
	return strings.ToUpper(language) + ":" + text, nil
}

func setup(translator translation.Translator) http.Handler {
	profiles := profileservice.NewService("en", []string{"en", "es"}, stubAnalyzer{})
	var cache *translation.Cache
	if translator != nil {
		cache = translation.NewCache(translator, "en", nil)
	}

	r := chi.NewRouter()
	New(profiles, cache).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSettingsRoundTrip(t *testing.T) {
	r := setup(nil)

	rec := do(r, http.MethodGet, "/users/u1/settings", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"language":"en"`) {
		t.Fatalf("unexpected default settings %d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPut, "/users/u1/settings", `{"language":"es","voiceUri":"v2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var settings profile.Settings
	_ = json.Unmarshal(do(r, http.MethodGet, "/users/u1/settings", "").Body.Bytes(), &settings)
	if settings.Language != "es" || settings.VoiceURI != "v2" {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestSettingsRejectsUnsupportedLanguage(t *testing.T) {
	r := setup(nil)

	rec := do(r, http.MethodPut, "/users/u1/settings", `{"language":"tlh"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranslateUsesCache(t *testing.T) {
	r := setup(stubTranslator{})

	rec := do(r, http.MethodPost, "/translate", `{"language":"es","texts":["Home","Goals"]}`)
	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Fallback || len(resp.Texts) != 2 || resp.Texts[0] != "ES:Home" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTranslateFallsBackToSource(t *testing.T) {
	r := setup(stubTranslator{fail: true})

	rec := do(r, http.MethodPost, "/translate", `{"language":"es","texts":["Home"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp translateResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Fallback || resp.Texts[0] != "Home" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTranslateWithoutTranslator(t *testing.T) {
	r := setup(nil)

	rec := do(r, http.MethodPost, "/translate", `{"language":"es","texts":["Home"]}`)
	var resp translateResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Texts[0] != "Home" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTranslateRejectsUnsupportedLanguage(t *testing.T) {
	r := setup(stubTranslator{})

	rec := do(r, http.MethodPost, "/translate", `{"language":"tlh","texts":["Home"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranslateRejectsOversizedRequest(t *testing.T) {
	r := setup(stubTranslator{})

	texts := make([]string, maxTranslateTexts+1)
	for i := range texts {
		texts[i] = "Home"
	}
	body, _ := json.Marshal(translateRequest{Language: "es", Texts: texts})
	if rec := do(r, http.MethodPost, "/translate", string(body)); rec.Code != http.StatusBadRequest {
		t.Fatalf("too many texts: expected 400, got %d", rec.Code)
	}

	body, _ = json.Marshal(translateRequest{Language: "es", Texts: []string{strings.Repeat("a", maxTextLength+1)}})
	if rec := do(r, http.MethodPost, "/translate", string(body)); rec.Code != http.StatusBadRequest {
		t.Fatalf("long text: expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeAndUpdateGoal(t *testing.T) {
	r := setup(nil)

	rec := do(r, http.MethodPost, "/users/u1/skills/analyze", `{"targetRole":"data analyst","currentSkills":["excel"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var data profile.UserData
	_ = json.Unmarshal(do(r, http.MethodGet, "/users/u1/dashboard", "").Body.Bytes(), &data)
	if len(data.Goals) != 1 || data.Goals[0].Title != "Learn SQL" {
		t.Fatalf("unexpected dashboard %+v", data)
	}

	rec = do(r, http.MethodPut, "/users/u1/goals/"+data.Goals[0].ID, `{"progress":40}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"progress":40`) {
		t.Fatalf("unexpected goal update %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(r, http.MethodPut, "/users/u1/goals/"+data.Goals[0].ID, `{"progress":140}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range progress, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPut, "/users/u1/goals/missing", `{"progress":10}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
