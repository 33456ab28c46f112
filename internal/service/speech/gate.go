package speech

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
)

// Synthesizer 是平台语音合成能力（浏览器 speechSynthesis 等）。
type Synthesizer interface {
	Available() bool
	Speak(u speech.Utterance) error
	Cancel() error
}

// Gate 保证同一时刻最多只有一段播报：先取消，再播报。
type Gate struct {
	synth  Synthesizer
	voices *VoiceRegistry

	mu sync.Mutex
}

func NewGate(synth Synthesizer, voices *VoiceRegistry) *Gate {
	return &Gate{synth: synth, voices: voices}
}

// Speak 使用选中音色播报 text；文本为空或平台不支持时什么也不做。
func (g *Gate) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" || g.synth == nil || !g.synth.Available() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.synth.Cancel(); err != nil {
		return fmt.Errorf("cancel previous utterance: %w", err)
	}

	utterance := speech.Utterance{
		ID:   uuid.NewString(),
		Text: text,
	}
	if g.voices != nil {
		// 未选中音色时留空，由平台使用默认音色
		if voice, ok := g.voices.Selected(); ok {
			utterance.VoiceURI = voice.URI
			utterance.Lang = voice.Lang
		}
	}

	if err := g.synth.Speak(utterance); err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

// CancelAll 取消正在播放的播报，可以重复调用。
func (g *Gate) CancelAll() error {
	if g.synth == nil || !g.synth.Available() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.synth.Cancel()
}
