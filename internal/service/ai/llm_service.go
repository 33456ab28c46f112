package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/career-guide/backend/internal/config"
	"github.com/zhouzirui/career-guide/backend/internal/model/chat"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
)

const historyLimit = 10

// Service encapsulates AI-powered chat functionality and the task prompts
// used by the interview, translation and skill analysis features.
type Service struct {
	chatModel model.BaseChatModel
	personas  persona.Store
	cfg       config.AIConfig
	prompts   *PromptManager
	metrics   *observability.Metrics

	// chain 用于角色对话：system + 历史 + 用户输入
	chain compose.Runnable[map[string]any, *schema.Message]
	// tasks 用于一次性任务：指令 + 输入
	tasks compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance backed by the configured Ark model.
func NewService(ctx context.Context, personas persona.Store, cfg config.AIConfig, metrics *observability.Metrics) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, personas, cfg, metrics)
}

// NewServiceWithModel wires the chains around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, personas persona.Store, cfg config.AIConfig, metrics *observability.Metrics) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	taskTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{instructions}"),
		schema.UserMessage("{input}"),
	)

	taskChain := compose.NewChain[map[string]any, *schema.Message]()
	taskChain.AppendChatTemplate(taskTemplate)
	taskChain.AppendChatModel(chatModel)

	tasks, err := taskChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile task chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		personas:  personas,
		cfg:       cfg,
		prompts:   NewPromptManager(),
		metrics:   metrics,
		chain:     runnable,
		tasks:     tasks,
	}, nil
}

// StreamingEnabled 指示是否开启 SSE 流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateResponse generates the guide reply for a persona-based conversation
func (s *Service) GenerateResponse(ctx context.Context, sessionID string, p *persona.Persona, messages []chat.Message, userMessage string) (*schema.Message, error) {
	input := s.buildChainInput(p, messages, userMessage)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated response for session=%s, persona=%s, length=%d", sessionID, p.ID, len(response.Content))
	return response, nil
}

// StreamResponse streams AI response chunks via the configured chain.
func (s *Service) StreamResponse(ctx context.Context, p *persona.Persona, messages []chat.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input := s.buildChainInput(p, messages, userMessage)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}

	return stream, nil
}

// GetChatModel 返回底层的聊天模型
func (s *Service) GetChatModel() model.BaseChatModel {
	return s.chatModel
}

// runTask 执行一次性任务并返回去除首尾空白的文本。
func (s *Service) runTask(ctx context.Context, instructions, input string) (string, error) {
	msg, err := s.tasks.Invoke(ctx, map[string]any{
		"instructions": instructions,
		"input":        input,
	})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("empty model response")
	}
	return strings.TrimSpace(msg.Content), nil
}

func (s *Service) buildChainInput(p *persona.Persona, messages []chat.Message, userMessage string) map[string]any {
	return map[string]any{
		"system":  s.prompts.BuildSystemPrompt(p),
		"history": s.buildHistoryMessages(messages),
		"query":   userMessage,
	}
}

func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
