package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/zhouzirui/career-guide/backend/internal/model/profile"
)

type fakeAnalyzer struct {
	analysis profile.SkillAnalysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) AnalyzeSkills(_ context.Context, req profile.SkillRequest) (profile.SkillAnalysis, error) {
	f.calls++
	if f.err != nil {
		return profile.SkillAnalysis{}, f.err
	}
	analysis := f.analysis
	analysis.TargetRole = req.TargetRole
	return analysis, nil
}

func newAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{analysis: profile.SkillAnalysis{
		SkillGaps: []profile.SkillGap{
			{Skill: "SQL", Reason: "metrics"},
			{Skill: "Roadmapping", Reason: "planning"},
		},
		LearningPlan: []profile.LearningItem{{Resource: "Inspired", Description: "Book", Type: "book"}},
	}}
}

func TestSettingsDefaultToBaseLanguage(t *testing.T) {
	svc := NewService("en", []string{"es", "fr"}, nil)

	settings, err := svc.Settings("u1")
	if err != nil {
		t.Fatalf("Settings err: %v", err)
	}
	if settings.Language != "en" || settings.UserID != "u1" {
		t.Fatalf("unexpected default settings %+v", settings)
	}
	if _, err := svc.Settings(""); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestUpdateSettingsValidatesLanguage(t *testing.T) {
	svc := NewService("en", []string{"es"}, nil)

	lang := "ES"
	voice := "en-2"
	settings, err := svc.UpdateSettings("u1", SettingsUpdate{Language: &lang, VoiceURI: &voice})
	if err != nil {
		t.Fatalf("UpdateSettings err: %v", err)
	}
	if settings.Language != "es" || settings.VoiceURI != "en-2" {
		t.Fatalf("unexpected settings %+v", settings)
	}

	bad := "klingon"
	if _, err := svc.UpdateSettings("u1", SettingsUpdate{Language: &bad}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}

	stored, _ := svc.Settings("u1")
	if stored.Language != "es" || stored.VoiceURI != "en-2" {
		t.Fatalf("expected failed update to leave settings untouched, got %+v", stored)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	svc := NewService("en", nil, nil)

	voice := "v1"
	if _, err := svc.UpdateSettings("u1", SettingsUpdate{VoiceURI: &voice}); err != nil {
		t.Fatalf("UpdateSettings err: %v", err)
	}
	settings, _ := svc.Settings("u1")
	if settings.Language != "en" || settings.VoiceURI != "v1" {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestAnalyzeSkillsDerivesGoals(t *testing.T) {
	analyzer := newAnalyzer()
	svc := NewService("en", nil, analyzer)

	data, err := svc.AnalyzeSkills(context.Background(), "u1", profile.SkillRequest{TargetRole: "PM"})
	if err != nil {
		t.Fatalf("AnalyzeSkills err: %v", err)
	}
	if len(data.Goals) != 2 {
		t.Fatalf("expected one goal per skill gap, got %+v", data.Goals)
	}
	for i, gap := range []string{"SQL", "Roadmapping"} {
		if data.Goals[i].Skill != gap || data.Goals[i].Progress != 0 || data.Goals[i].ID == "" {
			t.Fatalf("unexpected goal %+v", data.Goals[i])
		}
	}
	if data.Analysis == nil || data.Analysis.TargetRole != "PM" {
		t.Fatalf("expected analysis to be stored, got %+v", data.Analysis)
	}

	stored, _ := svc.UserData("u1")
	if len(stored.Goals) != 2 {
		t.Fatalf("expected dashboard to expose goals, got %+v", stored)
	}
}

func TestAnalyzeSkillsErrorKeepsPreviousData(t *testing.T) {
	analyzer := newAnalyzer()
	svc := NewService("en", nil, analyzer)
	if _, err := svc.AnalyzeSkills(context.Background(), "u1", profile.SkillRequest{TargetRole: "PM"}); err != nil {
		t.Fatalf("AnalyzeSkills err: %v", err)
	}

	analyzer.err = errors.New("model offline")
	if _, err := svc.AnalyzeSkills(context.Background(), "u1", profile.SkillRequest{TargetRole: "PM"}); err == nil {
		t.Fatal("expected error from analyzer")
	}

	stored, _ := svc.UserData("u1")
	if len(stored.Goals) != 2 {
		t.Fatalf("expected previous goals kept, got %+v", stored.Goals)
	}
}

func TestUpdateGoalProgress(t *testing.T) {
	svc := NewService("en", nil, newAnalyzer())
	data, err := svc.AnalyzeSkills(context.Background(), "u1", profile.SkillRequest{TargetRole: "PM"})
	if err != nil {
		t.Fatalf("AnalyzeSkills err: %v", err)
	}
	goalID := data.Goals[1].ID

	goal, err := svc.UpdateGoalProgress("u1", goalID, 40)
	if err != nil {
		t.Fatalf("UpdateGoalProgress err: %v", err)
	}
	if goal.Progress != 40 {
		t.Fatalf("expected progress 40, got %d", goal.Progress)
	}

	if _, err := svc.UpdateGoalProgress("u1", goalID, 101); !errors.Is(err, ErrInvalidProgress) {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
	if _, err := svc.UpdateGoalProgress("u1", "missing", 10); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
	if _, err := svc.UpdateGoalProgress("u2", goalID, 10); !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound for other user, got %v", err)
	}

	// 返回的副本被修改不影响内部状态
	data.Goals[1].Progress = 99
	stored, _ := svc.UserData("u1")
	if stored.Goals[1].Progress != 40 {
		t.Fatalf("expected stored progress 40, got %d", stored.Goals[1].Progress)
	}
}
