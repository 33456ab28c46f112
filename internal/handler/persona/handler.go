package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

// handleListPersonas 列出persona，可按 ?role=guide|interviewer 过滤
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	role := persona.Role(r.URL.Query().Get("role"))

	var personas []persona.Persona
	switch role {
	case "":
		personas = h.personas.List()
	case persona.RoleGuide, persona.RoleInterviewer:
		personas = h.personas.ListByRole(role)
	default:
		utils.RespondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	if personas == nil {
		personas = []persona.Persona{}
	}
	utils.RespondJSON(w, http.StatusOK, personas)
}
