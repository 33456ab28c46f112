package interview

// Turn is one completed question/answer/feedback triple.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// Evaluation is what the feedback collaborator returns for a submitted answer.
// NextQuestion is empty when the interviewer has no further question.
type Evaluation struct {
	Feedback     string `json:"feedback"`
	NextQuestion string `json:"nextQuestion,omitempty"`
}
