package interview

import (
	"errors"

	speechsvc "github.com/zhouzirui/career-guide/backend/internal/service/speech"
)

var (
	// ErrCapabilityUnavailable 平台没有语音识别能力，状态保持不变。
	ErrCapabilityUnavailable = speechsvc.ErrCapabilityUnavailable
	// ErrEmptyInput 空白回答，会话回到等待回答，不展示给用户。
	ErrEmptyInput = errors.New("empty answer")
	// ErrCollaboratorFailure 外部协作方调用失败，已转换为兜底文本。
	ErrCollaboratorFailure = errors.New("collaborator failure")
	// ErrInvalidTransition 当前阶段不接受该操作。
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	// ErrBusy 总结已在生成中。
	ErrBusy = errors.New("summary already in progress")
	// ErrClosed 会话已销毁。
	ErrClosed = errors.New("session closed")
)
