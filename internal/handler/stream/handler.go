package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/career-guide/backend/internal/model/chat"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	aiService "github.com/zhouzirui/career-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/career-guide/backend/internal/service/chat"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// Handler manages streaming guide replies via Server-Sent Events
type Handler struct {
	aiService *aiService.Service
	chatSvc   *chatService.Service
	personas  persona.Store
}

// New creates a new stream handler
func New(aiSvc *aiService.Service, chatSvc *chatService.Service, personas persona.Store) *Handler {
	return &Handler{
		aiService: aiSvc,
		chatSvc:   chatSvc,
		personas:  personas,
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RegisterRoutes 注册流式回复路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if h.aiService == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
		return
	}
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
		log.Printf("[stream] error handling request: %v", err)
	}
}

// HandleStreamRequest processes streaming AI responses for a chat session
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	session, p, err := h.getSessionPersona(ctx, sessionID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to get session persona: %v", err))
		return err
	}

	messages, err := h.chatSvc.LoadTranscript(ctx, session.ID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to load conversation: %v", err))
		return err
	}

	// 客户端可能已经通过 REST 保存了这条消息，避免重复写入。
	if !hasMatchingUserMessage(messages, sessionID, userMessage) {
		saved, err := h.chatSvc.SaveMessage(ctx, chat.Message{
			SessionID: sessionID,
			Sender:    chat.SenderUser,
			Content:   userMessage,
		})
		if err != nil {
			log.Printf("[stream] failed to save user message: %v", err)
		} else {
			messages = append(messages, saved)
		}
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Content:   p.Name,
	})

	response, err := h.dispatchAIResponse(ctx, w, flusher, sessionID, p, messages, userMessage)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("AI generation failed: %v", err))
		return err
	}

	if _, err := h.chatSvc.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Content:   response.Content,
	}); err != nil {
		log.Printf("[stream] failed to save assistant message: %v", err)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s, persona=%s", sessionID, p.ID)
	return nil
}

func (h *Handler) dispatchAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p *persona.Persona, messages []chat.Message, userMessage string) (*schema.Message, error) {
	// 历史里已包含本轮用户消息，交给模型时去掉最后一条，避免重复
	history := messages
	if hasMatchingUserMessage(history, sessionID, userMessage) {
		history = history[:len(history)-1]
	}

	if h.aiService.StreamingEnabled() {
		return h.streamAIResponse(ctx, w, flusher, sessionID, p, history, userMessage)
	}

	response, err := h.aiService.GenerateResponse(ctx, sessionID, p, history, userMessage)
	if err != nil {
		return nil, err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   response.Content,
	})

	return response, nil
}

// getSessionPersona retrieves session and associated persona information
func (h *Handler) getSessionPersona(ctx context.Context, sessionID string) (*chat.Session, *persona.Persona, error) {
	session, err := h.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("session not found: %w", err)
	}

	p, ok := h.personas.FindByID(session.PersonaID)
	if !ok {
		return nil, nil, fmt.Errorf("persona %s not found", session.PersonaID)
	}

	return &session, &p, nil
}

func hasMatchingUserMessage(messages []chat.Message, sessionID, content string) bool {
	if len(messages) == 0 {
		return false
	}

	last := messages[len(messages)-1]
	return last.SessionID == sessionID && last.Sender == chat.SenderUser && last.Content == content
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}

func (h *Handler) streamAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, p *persona.Persona, messages []chat.Message, userMessage string) (*schema.Message, error) {
	stream, err := h.aiService.StreamResponse(ctx, p, messages, userMessage)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   response.Content,
	})

	return response, nil
}
