package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "INTERVIEW_CALL_TIMEOUT", "INTERVIEW_PROFILE_PATH", "BASE_LANGUAGE",
		"SUPPORTED_LANGUAGES", "VOICE_LANGUAGE_PREFIX", "METRICS_ENABLED", "METRICS_NAMESPACE",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "ARK_STREAM", "WS_ALLOW_ANY_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" || cfg.Server.AllowAnyOrigin {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Interview.CallTimeout != 60*time.Second {
		t.Fatalf("expected 60s call timeout, got %s", cfg.Interview.CallTimeout)
	}
	if cfg.Interview.Profile.OpeningPrompt != defaultOpeningPrompt {
		t.Fatalf("unexpected opening prompt %q", cfg.Interview.Profile.OpeningPrompt)
	}
	if cfg.Locale.BaseLanguage != "en" || len(cfg.Locale.SupportedLanguages) != 6 {
		t.Fatalf("unexpected locale config %+v", cfg.Locale)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != "career_guide" {
		t.Fatalf("unexpected metrics config %+v", cfg.Metrics)
	}
}

func TestLoadServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig returned error: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("expected addr to be kept, got %q", cfg.Addr)
	}
}

func TestLoadInterviewConfigRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("INTERVIEW_CALL_TIMEOUT", "0")
	t.Setenv("INTERVIEW_PROFILE_PATH", "")

	if _, err := loadInterviewConfig(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestLoadLocaleConfigAddsBaseLanguage(t *testing.T) {
	t.Setenv("BASE_LANGUAGE", "EN")
	t.Setenv("SUPPORTED_LANGUAGES", "es, fr ,es,,")
	t.Setenv("VOICE_LANGUAGE_PREFIX", "")

	cfg, err := loadLocaleConfig()
	if err != nil {
		t.Fatalf("loadLocaleConfig returned error: %v", err)
	}

	want := []string{"en", "es", "fr"}
	if len(cfg.SupportedLanguages) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.SupportedLanguages)
	}
	for i := range want {
		if cfg.SupportedLanguages[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.SupportedLanguages)
		}
	}
}

func TestLoadMetricsConfigRejectsInvalidBool(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "sometimes")

	if _, err := loadMetricsConfig(); err == nil {
		t.Fatal("expected error for invalid METRICS_ENABLED")
	}
}

func TestLoadInterviewProfileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.yaml")
	content := []byte("role: staff engineer\nfallbacks:\n  summary: no summary today\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadInterviewProfile(path)
	if err != nil {
		t.Fatalf("LoadInterviewProfile returned error: %v", err)
	}

	if profile.Role != "staff engineer" {
		t.Fatalf("expected role override, got %q", profile.Role)
	}
	if profile.Fallbacks.Summary != "no summary today" {
		t.Fatalf("expected summary fallback override, got %q", profile.Fallbacks.Summary)
	}
	defaults := DefaultInterviewProfile()
	if profile.OpeningPrompt != defaults.OpeningPrompt || profile.Fallbacks.Feedback != defaults.Fallbacks.Feedback {
		t.Fatalf("expected missing fields to keep defaults, got %+v", profile)
	}
}

func TestLoadInterviewProfileMissingFile(t *testing.T) {
	if _, err := LoadInterviewProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing profile file")
	}
}
