package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouzirui/career-guide/backend/internal/config"
	"github.com/zhouzirui/career-guide/backend/internal/handler"
	interviewHandler "github.com/zhouzirui/career-guide/backend/internal/handler/interview"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
	"github.com/zhouzirui/career-guide/backend/internal/service/ai"
	"github.com/zhouzirui/career-guide/backend/internal/service/chat"
	interviewService "github.com/zhouzirui/career-guide/backend/internal/service/interview"
	"github.com/zhouzirui/career-guide/backend/internal/service/profile"
	"github.com/zhouzirui/career-guide/backend/internal/service/translation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var (
		metrics  *observability.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
		gatherer = prometheus.DefaultGatherer
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService()

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, personaStore, cfg.AI, metrics)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
			aiService = nil
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	var (
		analyzer     profile.SkillAnalyzer
		translations *translation.Cache
		interviewers interviewHandler.InterviewerFactory
	)
	if aiService != nil {
		analyzer = aiService
		translations = translation.NewCache(aiService, cfg.Locale.BaseLanguage, metrics)
		interviewers = newInterviewerFactory(aiService, cfg.Interview.Profile)
	}
	profileService := profile.NewService(cfg.Locale.BaseLanguage, cfg.Locale.SupportedLanguages, analyzer)

	router := handler.NewRouter(handler.Dependencies{
		Personas:     personaStore,
		Chat:         chatService,
		AI:           aiService,
		Profiles:     profileService,
		Translations: translations,
		Interview: interviewHandler.Options{
			Interviewers:        interviewers,
			Profiles:            profileService,
			Interview:           cfg.Interview,
			VoiceLanguagePrefix: cfg.Locale.VoiceLanguagePrefix,
			AllowAnyOrigin:      cfg.Server.AllowAnyOrigin,
			Metrics:             metrics,
		},
		Gatherer: gatherer,
	})

	startServer(ctx, cfg.Server, router)
}

// newInterviewerFactory 校验面试官 persona 后返回每个连接使用的工厂
func newInterviewerFactory(aiService *ai.Service, p config.InterviewProfile) interviewHandler.InterviewerFactory {
	if _, err := aiService.Interviewer(p.PersonaID, p.Role); err != nil {
		log.Printf("warning: interview disabled: %v", err)
		return nil
	}
	return func() (interviewService.Interviewer, error) {
		iv, err := aiService.Interviewer(p.PersonaID, p.Role)
		if err != nil {
			return nil, err
		}
		return iv, nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Career guide backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
