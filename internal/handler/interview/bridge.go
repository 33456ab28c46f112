package interview

import (
	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
)

// wsSynthesizer 把播报请求转发给浏览器的 speechSynthesis。
type wsSynthesizer struct {
	conn      *connection
	available bool
}

func (s *wsSynthesizer) Available() bool {
	return s.available
}

func (s *wsSynthesizer) Speak(u speech.Utterance) error {
	return s.conn.send(typeSpeechSpeak, u)
}

func (s *wsSynthesizer) Cancel() error {
	return s.conn.send(typeSpeechCancel, nil)
}

// wsRecognizer 让浏览器开启或结束一次语音识别，结果以 capture.* 帧回传。
type wsRecognizer struct {
	conn      *connection
	available bool
}

func (r *wsRecognizer) Available() bool {
	return r.available
}

func (r *wsRecognizer) Start() error {
	return r.conn.send(typeCaptureStart, nil)
}

func (r *wsRecognizer) Stop() error {
	return r.conn.send(typeCaptureStop, nil)
}
