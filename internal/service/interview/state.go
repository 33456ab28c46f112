package interview

import "github.com/zhouzirui/career-guide/backend/internal/model/interview"

// state 是会话阶段的标签联合，每个阶段只携带该阶段有效的字段。
type state interface {
	phase() interview.Phase
	fill(v *interview.View)
}

type starting struct{}

type awaitingAnswer struct {
	question   string
	transcript string
	notice     string
}

type listening struct {
	question string
}

type processing struct {
	question   string
	transcript string
}

type displayingFeedback struct {
	question   string
	transcript string
	feedback   string
	next       string
}

type processingSummary struct{}

type completed struct {
	summary string
}

type exited struct{}

func (starting) phase() interview.Phase           { return interview.PhaseStarting }
func (awaitingAnswer) phase() interview.Phase     { return interview.PhaseAwaitingAnswer }
func (listening) phase() interview.Phase          { return interview.PhaseListening }
func (processing) phase() interview.Phase         { return interview.PhaseProcessing }
func (displayingFeedback) phase() interview.Phase { return interview.PhaseDisplayingFeedback }
func (processingSummary) phase() interview.Phase  { return interview.PhaseProcessingSummary }
func (completed) phase() interview.Phase          { return interview.PhaseCompleted }
func (exited) phase() interview.Phase             { return interview.PhaseExited }

func (starting) fill(*interview.View) {}

func (s awaitingAnswer) fill(v *interview.View) {
	v.CurrentQuestion = s.question
	v.UserTranscript = s.transcript
	v.Notice = s.notice
}

func (s listening) fill(v *interview.View) {
	v.CurrentQuestion = s.question
}

func (s processing) fill(v *interview.View) {
	v.CurrentQuestion = s.question
	v.UserTranscript = s.transcript
}

func (s displayingFeedback) fill(v *interview.View) {
	v.CurrentQuestion = s.question
	v.UserTranscript = s.transcript
	v.Feedback = s.feedback
	v.StagedNextQuestion = s.next
}

func (processingSummary) fill(*interview.View) {}

func (s completed) fill(v *interview.View) {
	v.Summary = s.summary
}

func (exited) fill(*interview.View) {}
