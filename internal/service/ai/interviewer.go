package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/career-guide/backend/internal/model/interview"
	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
)

const evaluationInstructions = `Evaluate the candidate's answer to the interview question.
Give concise, specific feedback: what was strong, what was missing, and how to improve it using the STAR method.
Then decide whether to continue. If the interview should continue, write the next behavioral question; if enough has been covered, leave it empty.
Output requirements: return only one JSON object with the fields feedback (string) and nextQuestion (string, may be empty). No other text.`

const summaryInstructions = `You have just finished a mock interview. Write a short performance summary for the candidate:
- overall impression
- strongest answers and why
- the two or three most important areas to improve
- one concrete practice suggestion
Be specific and refer to the candidate's actual answers. Plain text, no markdown emphasis.`

// Interviewer 以面试官角色调用模型：开场、点评、总结。
type Interviewer struct {
	svc     *Service
	persona persona.Persona
	role    string
}

// Interviewer 返回绑定到指定面试官角色的协作方。
func (s *Service) Interviewer(personaID, role string) (*Interviewer, error) {
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return nil, fmt.Errorf("persona %s not found", personaID)
	}
	if p.Role != persona.RoleInterviewer {
		return nil, fmt.Errorf("persona %s is not an interviewer", personaID)
	}
	return &Interviewer{svc: s, persona: p, role: strings.TrimSpace(role)}, nil
}

// SendOpeningPrompt 发送开场提示并返回第一道题。
func (iv *Interviewer) SendOpeningPrompt(ctx context.Context, prompt string) (string, error) {
	msg, err := iv.svc.chain.Invoke(ctx, map[string]any{
		"system": iv.systemPrompt(),
		"query":  prompt,
	})
	if err != nil {
		return "", fmt.Errorf("opening question: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("opening question: empty model response")
	}
	return strings.TrimSpace(msg.Content), nil
}

type evaluationPayload struct {
	Feedback     string `json:"feedback"`
	NextQuestion string `json:"nextQuestion"`
}

// Evaluate 点评回答，并给出可选的下一题。
// 回复不是 JSON 时整段文本作为点评，不再追问。
func (iv *Interviewer) Evaluate(ctx context.Context, question, answer string) (interview.Evaluation, error) {
	input := fmt.Sprintf("Question: %s\n\nCandidate answer: %s", question, answer)

	content, err := iv.svc.runTask(ctx, iv.systemPrompt()+"\n\n"+evaluationInstructions, input)
	if err != nil {
		return interview.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	if content == "" {
		return interview.Evaluation{}, fmt.Errorf("evaluate answer: empty model response")
	}

	var payload evaluationPayload
	if err := extractJSONObject(content, &payload); err != nil || strings.TrimSpace(payload.Feedback) == "" {
		log.Printf("[ai] evaluation output is not structured, using raw text: %v", err)
		return interview.Evaluation{Feedback: content}, nil
	}

	return interview.Evaluation{
		Feedback:     strings.TrimSpace(payload.Feedback),
		NextQuestion: strings.TrimSpace(payload.NextQuestion),
	}, nil
}

// Summarize 根据完整问答记录生成总结。
func (iv *Interviewer) Summarize(ctx context.Context, turns []interview.Turn) (string, error) {
	summary, err := iv.svc.runTask(ctx, iv.systemPrompt()+"\n\n"+summaryInstructions, buildTranscript(turns))
	if err != nil {
		return "", fmt.Errorf("summarize interview: %w", err)
	}
	return summary, nil
}

func (iv *Interviewer) systemPrompt() string {
	base := iv.svc.prompts.BuildSystemPrompt(&iv.persona)
	if iv.role == "" {
		return base
	}
	return fmt.Sprintf("%s\n\nThe candidate is interviewing for a %s role.", base, iv.role)
}

func buildTranscript(turns []interview.Turn) string {
	var b strings.Builder
	b.WriteString("QUESTIONS AND ANSWERS:\n")
	for i, turn := range turns {
		b.WriteString(fmt.Sprintf("%d. Question: %s\n", i+1, turn.Question))
		b.WriteString(fmt.Sprintf("   Answer: %s\n", turn.Answer))
		b.WriteString(fmt.Sprintf("   Feedback given: %s\n\n", turn.Feedback))
	}
	return b.String()
}
