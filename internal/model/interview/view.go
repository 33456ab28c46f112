package interview

// Phase is the lifecycle state of a mock-interview session.
type Phase string

const (
	PhaseStarting           Phase = "starting"
	PhaseAwaitingAnswer     Phase = "awaiting_answer"
	PhaseListening          Phase = "listening"
	PhaseProcessing         Phase = "processing"
	PhaseDisplayingFeedback Phase = "displaying_feedback"
	PhaseProcessingSummary  Phase = "processing_summary"
	PhaseCompleted          Phase = "completed"
	// PhaseExited marks a session left before any turn completed; no summary exists.
	PhaseExited Phase = "exited"
)

// Terminal reports whether no further transition can leave the phase.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseExited
}

// View is the flattened, render-ready snapshot of a session.
type View struct {
	SessionID          string `json:"sessionId"`
	Phase              Phase  `json:"phase"`
	QuestionNumber     int    `json:"questionNumber"`
	CurrentQuestion    string `json:"currentQuestion,omitempty"`
	StagedNextQuestion string `json:"stagedNextQuestion,omitempty"`
	UserTranscript     string `json:"userTranscript,omitempty"`
	Feedback           string `json:"feedback,omitempty"`
	History            []Turn `json:"history"`
	Summary            string `json:"summary,omitempty"`
	Notice             string `json:"notice,omitempty"`
}
