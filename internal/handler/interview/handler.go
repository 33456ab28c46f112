package interview

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/career-guide/backend/internal/config"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
	interviewService "github.com/zhouzirui/career-guide/backend/internal/service/interview"
	profileService "github.com/zhouzirui/career-guide/backend/internal/service/profile"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// InterviewerFactory 为每个连接创建面试官协作方。
type InterviewerFactory func() (interviewService.Interviewer, error)

// Options 描述面试处理器的依赖。
type Options struct {
	// Interviewers 为 nil 时面试不可用
	Interviewers        InterviewerFactory
	Profiles            *profileService.Service
	Interview           config.InterviewConfig
	VoiceLanguagePrefix string
	AllowAnyOrigin      bool
	Metrics             *observability.Metrics
}

// Handler 模拟面试的HTTP/WebSocket处理器
type Handler struct {
	opts     Options
	upgrader websocket.Upgrader
}

// New 创建面试处理器
func New(opts Options) *Handler {
	h := &Handler{opts: opts}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

// RegisterRoutes 注册面试相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/interview", func(ir chi.Router) {
		ir.Get("/health", h.handleHealth)
		ir.Get("/ws", h.handleWebSocket)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.opts.Interviewers == nil {
		status = "unavailable"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"role":      h.opts.Interview.Profile.Role,
		"personaId": h.opts.Interview.Profile.PersonaID,
	})
}

// checkOrigin 默认只允许同源的浏览器连接，没有 Origin 的非浏览器客户端放行。
func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.opts.AllowAnyOrigin {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
