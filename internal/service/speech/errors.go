package speech

import "errors"

var (
	// ErrCapabilityUnavailable 平台不支持语音合成或语音识别
	ErrCapabilityUnavailable = errors.New("speech capability unavailable")
	// ErrVoiceNotFound 选择的音色不在可用列表中
	ErrVoiceNotFound = errors.New("voice not found")
)
