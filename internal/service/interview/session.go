package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/career-guide/backend/internal/model/interview"
	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
	"github.com/zhouzirui/career-guide/backend/internal/observability"
)

const defaultCallTimeout = 60 * time.Second

// Dependencies 是会话依赖的外部协作方。Capture 为 nil 表示平台不支持语音识别。
type Dependencies struct {
	Interviewer Interviewer
	Speaker     Speaker
	Capture     Capture
	Metrics     *observability.Metrics
}

// Fallbacks 是协作方失败时替换显示的文本。
type Fallbacks struct {
	Opening  string
	Feedback string
	Summary  string
}

// Options 控制会话行为。
type Options struct {
	OpeningPrompt string
	Fallbacks     Fallbacks
	CallTimeout   time.Duration
	// OnChange 在每次状态变化后按顺序调用，调用时不持有会话锁。
	OnChange func(interview.View)
}

type effect func()

// Session 驱动一场模拟面试：出题、收集回答、点评、推进与总结。
// 所有公开方法都不阻塞，协作方调用在后台 goroutine 中完成，
// 结果只有在 epoch 未变且会话未关闭时才会生效。
type Session struct {
	id   string
	deps Dependencies
	opts Options

	mu        sync.Mutex
	ctx       context.Context
	st        state
	history   []interview.Turn
	seq       int
	spokenSeq int
	epoch     uint64
	started   bool
	closed    bool
	pending   []effect
	draining  bool

	wg sync.WaitGroup
}

func New(id string, deps Dependencies, opts Options) *Session {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Session{
		id:   id,
		deps: deps,
		opts: opts,
		st:   starting{},
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start 发出开场问题请求。
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.started = true
	s.ctx = ctx
	s.deps.Metrics.SessionOpened()

	s.emitLocked()
	epoch := s.nextEpochLocked()
	prompt := s.opts.OpeningPrompt
	s.goLocked("opening", func(ctx context.Context) error {
		question, err := s.deps.Interviewer.SendOpeningPrompt(ctx, prompt)
		s.openingDone(epoch, question, err)
		return err
	})
	s.mu.Unlock()

	s.flush()
	return nil
}

func (s *Session) openingDone(epoch uint64, question string, err error) {
	s.mu.Lock()
	if !s.currentLocked(epoch, interview.PhaseStarting) {
		s.mu.Unlock()
		return
	}

	text := stripMarkup(question)
	if err != nil || text == "" {
		log.Printf("[interview] session %s opening question unavailable: %v", s.id, s.failure(err))
		text = s.opts.Fallbacks.Opening
	}
	s.seq++
	s.enterAwaitingLocked(text, "", "")
	s.mu.Unlock()

	s.flush()
}

// ToggleListening 在等待回答时开始语音识别，在识别中时停止识别。
func (s *Session) ToggleListening() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	switch st := s.st.(type) {
	case awaitingAnswer:
		if s.deps.Capture == nil {
			s.mu.Unlock()
			return ErrCapabilityUnavailable
		}
		if err := s.deps.Capture.Start(); err != nil {
			s.mu.Unlock()
			if errors.Is(err, ErrCapabilityUnavailable) {
				return ErrCapabilityUnavailable
			}
			return fmt.Errorf("start listening: %w", err)
		}
		s.setStateLocked(listening{question: st.question})
	case listening:
		s.deps.Capture.Stop()
		s.enterAwaitingLocked(st.question, "", "")
	default:
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.mu.Unlock()

	s.flush()
	return nil
}

// OnCaptureEvent 接收语音识别事件，过期事件直接忽略。
func (s *Session) OnCaptureEvent(ev speech.CaptureEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch ev.Type {
	case speech.CaptureResult:
		if st, ok := s.st.(listening); ok {
			// 识别结果与提交是耦合的
			s.submitLocked(st.question, ev.Transcript)
		}
	case speech.CaptureEnd:
		if st, ok := s.st.(listening); ok {
			s.enterAwaitingLocked(st.question, "", "")
		}
	case speech.CaptureError:
		// 其他阶段不会有活跃的识别会话，到达的错误都是过期事件
		switch st := s.st.(type) {
		case listening:
			log.Printf("[interview] session %s capture error: %s", s.id, ev.Detail)
			s.enterAwaitingLocked(st.question, "", captureNotice(ev.Detail))
		case awaitingAnswer:
			s.enterAwaitingLocked(st.question, "", captureNotice(ev.Detail))
		}
	}
	s.mu.Unlock()

	s.flush()
}

func captureNotice(detail string) string {
	if strings.TrimSpace(detail) == "" {
		return "Speech recognition failed. Please try again."
	}
	return "Speech recognition failed: " + detail
}

// SubmitAnswer 提交文字回答。空白回答返回 ErrEmptyInput 并回到等待回答。
func (s *Session) SubmitAnswer(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	var question string
	switch st := s.st.(type) {
	case awaitingAnswer:
		question = st.question
	case listening:
		s.deps.Capture.Stop()
		question = st.question
	default:
		s.mu.Unlock()
		return ErrInvalidTransition
	}

	empty := !s.submitLocked(question, text)
	s.mu.Unlock()

	s.flush()
	if empty {
		return ErrEmptyInput
	}
	return nil
}

// submitLocked 返回是否真正发起了点评请求。
func (s *Session) submitLocked(question, transcript string) bool {
	if strings.TrimSpace(transcript) == "" {
		s.enterAwaitingLocked(question, "", "")
		return false
	}

	s.setStateLocked(processing{question: question, transcript: transcript})
	epoch := s.nextEpochLocked()
	s.goLocked("evaluate", func(ctx context.Context) error {
		eval, err := s.deps.Interviewer.Evaluate(ctx, question, transcript)
		s.evaluationDone(epoch, eval, err)
		return err
	})
	return true
}

func (s *Session) evaluationDone(epoch uint64, eval interview.Evaluation, err error) {
	s.mu.Lock()
	if !s.currentLocked(epoch, interview.PhaseProcessing) {
		s.mu.Unlock()
		return
	}
	st := s.st.(processing)

	if err != nil {
		log.Printf("[interview] session %s evaluation failed: %v", s.id, s.failure(err))
		s.enterAwaitingLocked(st.question, st.transcript, s.opts.Fallbacks.Feedback)
		s.mu.Unlock()
		s.flush()
		return
	}

	feedback := stripMarkup(eval.Feedback)
	next := stripMarkup(eval.NextQuestion)
	s.history = append(s.history, interview.Turn{
		Question: st.question,
		Answer:   st.transcript,
		Feedback: feedback,
	})
	s.setStateLocked(displayingFeedback{
		question:   st.question,
		transcript: st.transcript,
		feedback:   feedback,
		next:       next,
	})
	s.mu.Unlock()

	s.flush()
}

// Advance 进入下一题；没有下一题时自然结束并生成总结。
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	st, ok := s.st.(displayingFeedback)
	if !ok {
		s.mu.Unlock()
		return ErrInvalidTransition
	}

	if st.next != "" {
		s.seq++
		s.enterAwaitingLocked(st.next, "", "")
	} else {
		s.endLocked(true)
	}
	s.mu.Unlock()

	s.flush()
	return nil
}

// End 由用户提前结束面试。还没有完成任何一轮时直接退出，不生成总结。
func (s *Session) End() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	switch s.st.(type) {
	case processingSummary:
		s.mu.Unlock()
		return ErrBusy
	case completed, exited:
		s.mu.Unlock()
		return ErrInvalidTransition
	case listening:
		s.deps.Capture.Stop()
	}

	s.endLocked(false)
	s.mu.Unlock()

	s.flush()
	return nil
}

func (s *Session) endLocked(natural bool) {
	if len(s.history) == 0 && !natural {
		s.nextEpochLocked()
		s.setStateLocked(exited{})
		s.teardownLocked()
		return
	}

	s.setStateLocked(processingSummary{})
	epoch := s.nextEpochLocked()
	turns := make([]interview.Turn, len(s.history))
	copy(turns, s.history)
	s.goLocked("summarize", func(ctx context.Context) error {
		summary, err := s.deps.Interviewer.Summarize(ctx, turns)
		s.summaryDone(epoch, summary, err)
		return err
	})
}

func (s *Session) summaryDone(epoch uint64, summary string, err error) {
	s.mu.Lock()
	if !s.currentLocked(epoch, interview.PhaseProcessingSummary) {
		s.mu.Unlock()
		return
	}

	text := stripMarkup(summary)
	if err != nil || text == "" {
		log.Printf("[interview] session %s summary unavailable: %v", s.id, s.failure(err))
		text = s.opts.Fallbacks.Summary
	}
	s.setStateLocked(completed{summary: text})
	s.mu.Unlock()

	s.flush()
}

// Close 销毁会话：取消播报、停止识别，之后到达的协作方结果全部丢弃。可重复调用。
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.nextEpochLocked()
	if s.started {
		s.deps.Metrics.SessionClosed()
	}
	s.teardownLocked()
	s.mu.Unlock()

	s.flush()
}

func (s *Session) teardownLocked() {
	if s.deps.Capture != nil {
		s.deps.Capture.Stop()
	}
	if s.deps.Speaker != nil {
		s.enqueueLocked(func() {
			if err := s.deps.Speaker.CancelAll(); err != nil {
				log.Printf("[interview] session %s cancel speech failed: %v", s.id, err)
			}
		})
	}
}

// View 返回当前会话快照。
func (s *Session) View() interview.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) Phase() interview.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.phase()
}

// Wait 等待所有已发出的协作方调用和状态通知完成。
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) viewLocked() interview.View {
	history := make([]interview.Turn, len(s.history))
	copy(history, s.history)

	v := interview.View{
		SessionID:      s.id,
		Phase:          s.st.phase(),
		QuestionNumber: s.seq,
		History:        history,
	}
	s.st.fill(&v)
	return v
}

// enterAwaitingLocked 进入等待回答；每道题只播报一次。
func (s *Session) enterAwaitingLocked(question, transcript, notice string) {
	s.setStateLocked(awaitingAnswer{question: question, transcript: transcript, notice: notice})

	if question == "" || s.spokenSeq == s.seq || s.deps.Speaker == nil {
		return
	}
	s.spokenSeq = s.seq
	s.enqueueLocked(func() {
		if err := s.deps.Speaker.Speak(question); err != nil {
			log.Printf("[interview] session %s speak failed: %v", s.id, err)
		}
	})
}

func (s *Session) setStateLocked(next state) {
	from := s.st.phase()
	s.st = next
	s.deps.Metrics.ObserveTransition(string(from), string(next.phase()))
	s.emitLocked()
}

func (s *Session) emitLocked() {
	if s.opts.OnChange == nil {
		return
	}
	view := s.viewLocked()
	s.enqueueLocked(func() { s.opts.OnChange(view) })
}

func (s *Session) nextEpochLocked() uint64 {
	s.epoch++
	return s.epoch
}

func (s *Session) currentLocked(epoch uint64, phase interview.Phase) bool {
	return !s.closed && s.epoch == epoch && s.st.phase() == phase
}

// goLocked 在状态通知之后启动一次协作方调用。
func (s *Session) goLocked(operation string, call func(ctx context.Context) error) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	timeout := s.opts.CallTimeout

	s.enqueueLocked(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			started := time.Now()
			err := call(ctx)
			s.deps.Metrics.ObserveCall(operation, time.Since(started), err)
		}()
	})
}

func (s *Session) enqueueLocked(fn effect) {
	s.wg.Add(1)
	s.pending = append(s.pending, fn)
}

// flush 按入队顺序执行副作用；已有 goroutine 在执行时直接返回，由它继续处理。
func (s *Session) flush() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, fn := range batch {
			fn()
			s.wg.Done()
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Session) failure(err error) error {
	if err == nil {
		return fmt.Errorf("%w: empty response", ErrCollaboratorFailure)
	}
	return fmt.Errorf("%w: %v", ErrCollaboratorFailure, err)
}
