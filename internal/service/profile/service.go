package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/career-guide/backend/internal/model/profile"
)

var (
	ErrUserRequired        = errors.New("user id is required")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrInvalidProgress     = errors.New("progress must be between 0 and 100")
)

// SkillAnalyzer 是外部技能分析协作方。
type SkillAnalyzer interface {
	AnalyzeSkills(ctx context.Context, req profile.SkillRequest) (profile.SkillAnalysis, error)
}

// SettingsUpdate 只更新非 nil 的字段。
type SettingsUpdate struct {
	Language *string `json:"language,omitempty"`
	VoiceURI *string `json:"voiceUri,omitempty"`
}

// Service 保存每个用户的设置与派生数据，进程内有效。
type Service struct {
	baseLanguage string
	supported    map[string]struct{}
	languages    []string
	analyzer     SkillAnalyzer

	mu       sync.RWMutex
	settings map[string]profile.Settings
	data     map[string]profile.UserData
}

func NewService(baseLanguage string, supported []string, analyzer SkillAnalyzer) *Service {
	base := strings.ToLower(strings.TrimSpace(baseLanguage))
	set := map[string]struct{}{base: {}}
	languages := []string{base}
	for _, lang := range supported {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if _, ok := set[lang]; ok || lang == "" {
			continue
		}
		set[lang] = struct{}{}
		languages = append(languages, lang)
	}

	return &Service{
		baseLanguage: base,
		supported:    set,
		languages:    languages,
		analyzer:     analyzer,
		settings:     make(map[string]profile.Settings),
		data:         make(map[string]profile.UserData),
	}
}

// SupportedLanguages 返回可选的界面语言，基础语言在最前。
func (s *Service) SupportedLanguages() []string {
	return append([]string(nil), s.languages...)
}

func (s *Service) SupportsLanguage(language string) bool {
	_, ok := s.supported[strings.ToLower(strings.TrimSpace(language))]
	return ok
}

// Settings 返回用户设置；没有保存过时返回基础语言的默认设置。
func (s *Service) Settings(userID string) (profile.Settings, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.Settings{}, ErrUserRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsLocked(userID), nil
}

func (s *Service) settingsLocked(userID string) profile.Settings {
	if settings, ok := s.settings[userID]; ok {
		return settings
	}
	return profile.Settings{UserID: userID, Language: s.baseLanguage}
}

func (s *Service) UpdateSettings(userID string, update SettingsUpdate) (profile.Settings, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.Settings{}, ErrUserRequired
	}

	var language string
	if update.Language != nil {
		language = strings.ToLower(strings.TrimSpace(*update.Language))
		if _, ok := s.supported[language]; !ok {
			return profile.Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, *update.Language)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settingsLocked(userID)
	if update.Language != nil {
		settings.Language = language
	}
	if update.VoiceURI != nil {
		settings.VoiceURI = strings.TrimSpace(*update.VoiceURI)
	}
	settings.UpdatedAt = time.Now()
	s.settings[userID] = settings
	return settings, nil
}

// AnalyzeSkills 调用协作方生成技能分析，并按每个技能差距生成一个目标。
// 重新分析会替换之前的分析和目标。
func (s *Service) AnalyzeSkills(ctx context.Context, userID string, req profile.SkillRequest) (profile.UserData, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.UserData{}, ErrUserRequired
	}
	if s.analyzer == nil {
		return profile.UserData{}, fmt.Errorf("skill analyzer not configured")
	}

	analysis, err := s.analyzer.AnalyzeSkills(ctx, req)
	if err != nil {
		return profile.UserData{}, err
	}

	now := time.Now()
	goals := make([]profile.Goal, 0, len(analysis.SkillGaps))
	for _, gap := range analysis.SkillGaps {
		goals = append(goals, profile.Goal{
			ID:        uuid.NewString(),
			Title:     "Learn " + gap.Skill,
			Skill:     gap.Skill,
			Progress:  0,
			UpdatedAt: now,
		})
	}

	data := profile.UserData{
		UserID:    userID,
		Analysis:  &analysis,
		Goals:     goals,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.data[userID] = data
	s.mu.Unlock()

	return cloneUserData(data), nil
}

// UserData 返回用户的仪表盘数据。
func (s *Service) UserData(userID string) (profile.UserData, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.UserData{}, ErrUserRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[userID]
	if !ok {
		return profile.UserData{UserID: userID, Goals: []profile.Goal{}}, nil
	}
	return cloneUserData(data), nil
}

func (s *Service) UpdateGoalProgress(userID, goalID string, progress int) (profile.Goal, error) {
	if progress < 0 || progress > 100 {
		return profile.Goal{}, ErrInvalidProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[userID]
	if !ok {
		return profile.Goal{}, ErrGoalNotFound
	}

	for i := range data.Goals {
		if data.Goals[i].ID != goalID {
			continue
		}
		goals := append([]profile.Goal(nil), data.Goals...)
		goals[i].Progress = progress
		goals[i].UpdatedAt = time.Now()
		data.Goals = goals
		data.UpdatedAt = goals[i].UpdatedAt
		s.data[userID] = data
		return goals[i], nil
	}
	return profile.Goal{}, ErrGoalNotFound
}

func cloneUserData(data profile.UserData) profile.UserData {
	data.Goals = append([]profile.Goal{}, data.Goals...)
	if data.Analysis != nil {
		analysis := *data.Analysis
		analysis.SkillGaps = append([]profile.SkillGap(nil), analysis.SkillGaps...)
		analysis.LearningPlan = append([]profile.LearningItem(nil), analysis.LearningPlan...)
		data.Analysis = &analysis
	}
	return data
}
