package interview

import (
	"context"

	"github.com/zhouzirui/career-guide/backend/internal/model/interview"
)

// Interviewer 生成开场问题、点评回答并总结整场面试。
type Interviewer interface {
	SendOpeningPrompt(ctx context.Context, prompt string) (string, error)
	Evaluate(ctx context.Context, question, answer string) (interview.Evaluation, error)
	Summarize(ctx context.Context, turns []interview.Turn) (string, error)
}

// Speaker 是语音播报出口。
type Speaker interface {
	Speak(text string) error
	CancelAll() error
}

// Capture 是语音识别入口，事件通过 Session.OnCaptureEvent 回送。
// 实现不能在 Start/Stop 内同步回调会话。
type Capture interface {
	Start() error
	Stop()
}
