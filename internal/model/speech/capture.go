package speech

// CaptureEventType 语音识别会话事件类型
type CaptureEventType string

const (
	// CaptureResult 携带识别文本的结果事件
	CaptureResult CaptureEventType = "result"
	// CaptureEnd 会话结束但没有结果（用户提前停止或平台结束）
	CaptureEnd CaptureEventType = "end"
	// CaptureError 识别失败
	CaptureError CaptureEventType = "error"
)

// CaptureEvent 平台语音识别会话上报的事件
type CaptureEvent struct {
	Type       CaptureEventType `json:"type"`
	Transcript string           `json:"transcript,omitempty"`
	Detail     string           `json:"detail,omitempty"`
}
