package interview

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/career-guide/backend/internal/model/interview"
	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
	interviewService "github.com/zhouzirui/career-guide/backend/internal/service/interview"
	profileService "github.com/zhouzirui/career-guide/backend/internal/service/profile"
	speechService "github.com/zhouzirui/career-guide/backend/internal/service/speech"
	"github.com/zhouzirui/career-guide/backend/pkg/utils"
)

// 客户端 -> 服务端
const (
	typeHello         = "hello"
	typeVoices        = "voices"
	typeVoiceSelect   = "voice.select"
	typeListenToggle  = "listen.toggle"
	typeCaptureResult = "capture.result"
	typeCaptureEnd    = "capture.end"
	typeCaptureError  = "capture.error"
	typeAnswerSubmit  = "answer.submit"
	typeInterviewNext = "interview.advance"
	typeInterviewEnd  = "interview.end"
)

// 服务端 -> 客户端
const (
	typeState        = "state"
	typeSpeechSpeak  = "speech.speak"
	typeSpeechCancel = "speech.cancel"
	typeCaptureStart = "capture.start"
	typeCaptureStop  = "capture.stop"
	typeError        = "error"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

var errConnectionClosed = errors.New("connection closed")

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// HelloMessage 客户端声明平台语音能力与可用音色
type HelloMessage struct {
	SpeechSynthesis   bool           `json:"speechSynthesis"`
	SpeechRecognition bool           `json:"speechRecognition"`
	Voices            []speech.Voice `json:"voices"`
}

// VoicesMessage 平台音色列表变化
type VoicesMessage struct {
	Voices []speech.Voice `json:"voices"`
}

// VoiceSelectMessage 用户选择音色
type VoiceSelectMessage struct {
	VoiceURI string `json:"voiceUri"`
}

// CaptureMessage 浏览器识别会话上报的结果或错误
type CaptureMessage struct {
	Transcript string `json:"transcript"`
	Detail     string `json:"detail"`
}

// AnswerMessage 文本提交的回答
type AnswerMessage struct {
	Text string `json:"text"`
}

type voicesPayload struct {
	Voices   []speech.Voice `json:"voices"`
	Selected string         `json:"selected,omitempty"`
}

// connection 持有一个 WebSocket 上的面试会话及其语音桥接。
type connection struct {
	id       string
	userID   string
	handler  *Handler
	outbound chan outgoingMessage
	ctx      context.Context

	voices  *speechService.VoiceRegistry
	gate    *speechService.Gate
	capture *speechService.Capture
	session *interviewService.Session
}

// handleWebSocket 处理面试 WebSocket 连接，会话在收到 hello 后开始
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.opts.Interviewers == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "interview unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[interview-ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &connection{
		id:       uuid.NewString(),
		userID:   strings.TrimSpace(r.URL.Query().Get("userId")),
		handler:  h,
		outbound: make(chan outgoingMessage, 256),
		ctx:      ctx,
		voices:   speechService.NewVoiceRegistry(h.opts.VoiceLanguagePrefix),
	}
	defer c.close()

	log.Printf("[interview-ws] new connection session=%s user=%s", c.id, c.userID)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(conn, cancel)
	}()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[interview-ws] read error session=%s: %v", c.id, err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		h.opts.Metrics.ObserveWSMessage("inbound", metricType(msg.Type))
		if msg.SessionID != "" && msg.SessionID != c.id {
			c.sendError("session mismatch")
			continue
		}
		c.handleMessage(&msg)

		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
	log.Printf("[interview-ws] connection closed session=%s", c.id)
}

// writeLoop 串行写出所有帧，并定期发送 ping
func (c *connection) writeLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("[interview-ws] write failed session=%s: %v", c.id, err)
				cancel()
				return
			}
			c.handler.opts.Metrics.ObserveWSMessage("outbound", msg.Type)
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				cancel()
				return
			}
		}
	}
}

func (c *connection) send(msgType string, data interface{}) error {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: c.id,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	select {
	case <-c.ctx.Done():
		return errConnectionClosed
	case c.outbound <- msg:
		return nil
	}
}

func (c *connection) sendError(message string) {
	_ = c.send(typeError, map[string]string{"message": message})
}

func (c *connection) sendVoices() {
	_ = c.send(typeVoices, voicesPayload{
		Voices:   c.voices.Voices(),
		Selected: c.voices.SelectedURI(),
	})
}

// metricType 把客户端发来的类型收敛到已知集合，未知类型统一记为 unknown
func metricType(msgType string) string {
	switch msgType {
	case typeHello, typeVoices, typeVoiceSelect, typeListenToggle,
		typeCaptureResult, typeCaptureEnd, typeCaptureError,
		typeAnswerSubmit, typeInterviewNext, typeInterviewEnd:
		return msgType
	default:
		return "unknown"
	}
}

func (c *connection) handleMessage(msg *inboundMessage) {
	switch msg.Type {
	case typeHello:
		c.handleHello(msg.Data)
	case typeVoices:
		var payload VoicesMessage
		if err := decodeData(msg.Data, &payload); err != nil {
			c.sendError("invalid voices payload")
			return
		}
		c.voices.Refresh(payload.Voices)
		c.sendVoices()
	case typeVoiceSelect:
		c.handleVoiceSelect(msg.Data)
	case typeCaptureResult, typeCaptureEnd, typeCaptureError:
		c.handleCapture(msg.Type, msg.Data)
	case typeListenToggle, typeAnswerSubmit, typeInterviewNext, typeInterviewEnd:
		c.handleCommand(msg.Type, msg.Data)
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
}

func (c *connection) handleHello(raw json.RawMessage) {
	if c.session != nil {
		c.sendError("interview already started")
		return
	}

	var hello HelloMessage
	if err := decodeData(raw, &hello); err != nil {
		c.sendError("invalid hello payload")
		return
	}

	interviewer, err := c.handler.opts.Interviewers()
	if err != nil {
		log.Printf("[interview-ws] interviewer unavailable: %v", err)
		c.sendError("interviewer unavailable")
		return
	}

	c.restoreVoice()
	c.voices.Refresh(hello.Voices)
	c.gate = speechService.NewGate(&wsSynthesizer{conn: c, available: hello.SpeechSynthesis}, c.voices)
	c.capture = speechService.NewCapture(&wsRecognizer{conn: c, available: hello.SpeechRecognition})

	profile := c.handler.opts.Interview.Profile
	c.session = interviewService.New(c.id, interviewService.Dependencies{
		Interviewer: interviewer,
		Speaker:     c.gate,
		Capture:     c.capture,
		Metrics:     c.handler.opts.Metrics,
	}, interviewService.Options{
		OpeningPrompt: profile.OpeningPrompt,
		Fallbacks: interviewService.Fallbacks{
			Opening:  profile.Fallbacks.Opening,
			Feedback: profile.Fallbacks.Feedback,
			Summary:  profile.Fallbacks.Summary,
		},
		CallTimeout: c.handler.opts.Interview.CallTimeout,
		OnChange: func(view interview.View) {
			_ = c.send(typeState, view)
		},
	})
	c.capture.OnEvent(c.session.OnCaptureEvent)

	c.sendVoices()
	if err := c.session.Start(c.ctx); err != nil {
		c.sendError(err.Error())
	}
}

// restoreVoice 恢复用户上次保存的音色
func (c *connection) restoreVoice() {
	if c.userID == "" || c.handler.opts.Profiles == nil {
		return
	}
	settings, err := c.handler.opts.Profiles.Settings(c.userID)
	if err != nil || settings.VoiceURI == "" {
		return
	}
	c.voices.Restore(settings.VoiceURI)
}

func (c *connection) handleVoiceSelect(raw json.RawMessage) {
	var payload VoiceSelectMessage
	if err := decodeData(raw, &payload); err != nil {
		c.sendError("invalid voice.select payload")
		return
	}
	if err := c.voices.Select(payload.VoiceURI); err != nil {
		c.sendError(err.Error())
		return
	}

	if c.userID != "" && c.handler.opts.Profiles != nil {
		uri := payload.VoiceURI
		if _, err := c.handler.opts.Profiles.UpdateSettings(c.userID, profileService.SettingsUpdate{VoiceURI: &uri}); err != nil {
			log.Printf("[interview-ws] persist voice failed user=%s: %v", c.userID, err)
		}
	}
	c.sendVoices()
}

func (c *connection) handleCapture(msgType string, raw json.RawMessage) {
	if c.capture == nil {
		c.sendError("interview not started")
		return
	}

	var payload CaptureMessage
	if err := decodeData(raw, &payload); err != nil {
		c.sendError("invalid capture payload")
		return
	}

	ev := speech.CaptureEvent{Transcript: payload.Transcript, Detail: payload.Detail}
	switch msgType {
	case typeCaptureResult:
		ev.Type = speech.CaptureResult
	case typeCaptureEnd:
		ev.Type = speech.CaptureEnd
	default:
		ev.Type = speech.CaptureError
	}
	c.capture.Deliver(ev)
}

func (c *connection) handleCommand(msgType string, raw json.RawMessage) {
	if c.session == nil {
		c.sendError("interview not started")
		return
	}

	var err error
	switch msgType {
	case typeListenToggle:
		err = c.session.ToggleListening()
	case typeAnswerSubmit:
		var payload AnswerMessage
		if decodeErr := decodeData(raw, &payload); decodeErr != nil {
			c.sendError("invalid answer payload")
			return
		}
		err = c.session.SubmitAnswer(payload.Text)
	case typeInterviewNext:
		err = c.session.Advance()
	case typeInterviewEnd:
		err = c.session.End()
	}

	// 空白回答静默回到等待回答，state 帧已经告知客户端
	if err != nil && !errors.Is(err, interviewService.ErrEmptyInput) {
		c.sendError(commandError(err))
	}
}

func commandError(err error) string {
	switch {
	case errors.Is(err, interviewService.ErrCapabilityUnavailable):
		return "speech recognition unavailable"
	default:
		return err.Error()
	}
}

// close 拆除会话：停止识别、取消播报，迟到的协作方结果被丢弃
func (c *connection) close() {
	if c.session != nil {
		c.session.Close()
	}
}

func decodeData(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}
