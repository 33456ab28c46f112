package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouzirui/career-guide/backend/internal/handler/chat"
	"github.com/zhouzirui/career-guide/backend/internal/handler/interview"
	"github.com/zhouzirui/career-guide/backend/internal/handler/persona"
	"github.com/zhouzirui/career-guide/backend/internal/handler/profile"
	"github.com/zhouzirui/career-guide/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/career-guide/backend/internal/middleware"
	personaModel "github.com/zhouzirui/career-guide/backend/internal/model/persona"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
	aiService "github.com/zhouzirui/career-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/career-guide/backend/internal/service/chat"
	profileService "github.com/zhouzirui/career-guide/backend/internal/service/profile"
	"github.com/zhouzirui/career-guide/backend/internal/service/translation"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// Dependencies 是路由需要的全部服务；AI 为 nil 时相关接口返回 503
type Dependencies struct {
	Personas     personaModel.Store
	Chat         *chatService.Service
	AI           *aiService.Service
	Profiles     *profileService.Service
	Translations *translation.Cache
	Interview    interview.Options
	// Gatherer 非 nil 时暴露 /metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", observability.MetricsHandler(deps.Gatherer))
	}

	personaHandler := persona.New(deps.Personas)
	chatHandler := chat.New(deps.Chat, deps.Personas)
	streamHandler := stream.New(deps.AI, deps.Chat, deps.Personas)
	profileHandler := profile.New(deps.Profiles, deps.Translations)
	interviewHandler := interview.New(deps.Interview)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		profileHandler.RegisterRoutes(api)
		interviewHandler.RegisterRoutes(api)
	})

	return r
}
