package speech

import (
	"fmt"
	"log"
	"sync"

	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
)

// Recognizer 是平台语音识别会话。
type Recognizer interface {
	Available() bool
	Start() error
	Stop() error
}

// CaptureHandler 接收一次识别会话的结果、结束或错误事件。
type CaptureHandler func(speech.CaptureEvent)

// Capture 把平台识别会话包装成 start/stop 以及 result/end/error 事件。
type Capture struct {
	rec Recognizer

	mu      sync.Mutex
	active  bool
	handler CaptureHandler
}

func NewCapture(rec Recognizer) *Capture {
	return &Capture{rec: rec}
}

// OnEvent 注册事件回调，后注册的覆盖先注册的。
func (c *Capture) OnEvent(handler CaptureHandler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *Capture) Available() bool {
	return c.rec != nil && c.rec.Available()
}

// Start 开启一次识别会话；已在识别中时直接返回。
func (c *Capture) Start() error {
	if !c.Available() {
		return ErrCapabilityUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return nil
	}
	if err := c.rec.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	c.active = true
	return nil
}

// Stop 结束识别会话，未在识别中时为空操作。
// 停止后平台再上报的事件会被丢弃。
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.mu.Unlock()

	if err := c.rec.Stop(); err != nil {
		log.Printf("[capture] stop failed: %v", err)
	}
}

func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Deliver 由平台调用上报事件，返回事件是否被转发。
// 任何 result/end/error 事件都会结束当前会话。
func (c *Capture) Deliver(ev speech.CaptureEvent) bool {
	switch ev.Type {
	case speech.CaptureResult, speech.CaptureEnd, speech.CaptureError:
	default:
		return false
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	c.active = false
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(ev)
	}
	return true
}
