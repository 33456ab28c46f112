package profile

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/career-guide/backend/internal/model/profile"
	profileService "github.com/zhouzirui/career-guide/backend/internal/service/profile"
	"github.com/zhouzirui/career-guide/backend/internal/service/translation"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// Handler 用户设置、界面翻译与技能仪表盘的HTTP处理器
type Handler struct {
	profiles     *profileService.Service
	translations *translation.Cache
}

// New 创建处理器；translations 为 nil 时翻译接口原样返回文案
func New(profiles *profileService.Service, translations *translation.Cache) *Handler {
	return &Handler{
		profiles:     profiles,
		translations: translations,
	}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/languages", h.handleLanguages)
	r.Post("/translate", h.handleTranslate)

	r.Route("/users/{userID}", func(u chi.Router) {
		u.Get("/settings", h.handleGetSettings)
		u.Put("/settings", h.handleUpdateSettings)
		u.Post("/skills/analyze", h.handleAnalyzeSkills)
		u.Get("/dashboard", h.handleDashboard)
		u.Put("/goals/{goalID}", h.handleUpdateGoal)
	})
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"languages": h.profiles.SupportedLanguages(),
	})
}

type translateRequest struct {
	Language string   `json:"language"`
	Texts    []string `json:"texts"`
}

type translateResponse struct {
	Language string   `json:"language"`
	Texts    []string `json:"texts"`
	// Fallback 为 true 表示至少一条文案保留了原文
	Fallback bool `json:"fallback,omitempty"`
}

// 单次翻译请求的上限，界面文案都是短句
const (
	maxTranslateTexts = 200
	maxTextLength     = 2000
)

// handleTranslate 翻译界面文案；失败的条目保留原文，界面不会因此报错
func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		utils.RespondError(w, http.StatusBadRequest, "language is required")
		return
	}
	if !h.profiles.SupportsLanguage(req.Language) {
		respondServiceError(w, fmt.Errorf("%w: %q", profileService.ErrUnsupportedLanguage, req.Language))
		return
	}
	if len(req.Texts) > maxTranslateTexts {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d texts per request", maxTranslateTexts))
		return
	}
	for _, text := range req.Texts {
		if len(text) > maxTextLength {
			utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("text longer than %d bytes", maxTextLength))
			return
		}
	}

	resp := translateResponse{Language: req.Language, Texts: append([]string{}, req.Texts...)}
	if h.translations == nil {
		resp.Fallback = len(req.Texts) > 0
		utils.RespondJSON(w, http.StatusOK, resp)
		return
	}

	texts, err := h.translations.TranslateAll(r.Context(), req.Texts, req.Language)
	if err != nil {
		log.Printf("[translate] partial failure for %s: %v", req.Language, err)
		resp.Fallback = true
	}
	resp.Texts = texts
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.profiles.Settings(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update profileService.SettingsUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.profiles.UpdateSettings(chi.URLParam(r, "userID"), update)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleAnalyzeSkills(w http.ResponseWriter, r *http.Request) {
	var req profile.SkillRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetRole) == "" {
		utils.RespondError(w, http.StatusBadRequest, "targetRole is required")
		return
	}

	data, err := h.profiles.AnalyzeSkills(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		if errors.Is(err, profileService.ErrUserRequired) {
			respondServiceError(w, err)
			return
		}
		log.Printf("[profile] skill analysis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "skill analysis failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, data)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.profiles.UserData(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, data)
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Progress *int `json:"progress"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil || payload.Progress == nil {
		utils.RespondError(w, http.StatusBadRequest, "progress is required")
		return
	}

	goal, err := h.profiles.UpdateGoalProgress(chi.URLParam(r, "userID"), chi.URLParam(r, "goalID"), *payload.Progress)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, goal)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profileService.ErrUserRequired),
		errors.Is(err, profileService.ErrUnsupportedLanguage),
		errors.Is(err, profileService.ErrInvalidProgress):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profileService.ErrGoalNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
