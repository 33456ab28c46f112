package speech

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zhouzirui/career-guide/backend/internal/model/speech"
)

// VoiceRegistry 维护按语言前缀过滤后的音色列表以及当前选中的音色。
// 用户选择一旦存在，刷新列表时不会被默认策略覆盖。
type VoiceRegistry struct {
	prefix string

	mu         sync.RWMutex
	voices     []speech.Voice
	selected   string
	userChosen bool
}

func NewVoiceRegistry(langPrefix string) *VoiceRegistry {
	return &VoiceRegistry{prefix: strings.ToLower(strings.TrimSpace(langPrefix))}
}

// Refresh 在平台音色列表变化时调用，返回过滤后的列表。
func (r *VoiceRegistry) Refresh(all []speech.Voice) []speech.Voice {
	filtered := make([]speech.Voice, 0, len(all))
	for _, v := range all {
		if v.URI == "" {
			continue
		}
		if r.prefix == "" || strings.HasPrefix(strings.ToLower(v.Lang), r.prefix) {
			filtered = append(filtered, v)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.voices = filtered
	if r.userChosen {
		return cloneVoices(filtered)
	}
	if r.selected != "" && containsVoice(filtered, r.selected) {
		return cloneVoices(filtered)
	}

	r.selected = ""
	for _, v := range filtered {
		if v.Default {
			r.selected = v.URI
			break
		}
	}
	if r.selected == "" && len(filtered) > 0 {
		r.selected = filtered[0].URI
	}
	return cloneVoices(filtered)
}

// Select 记录用户选择的音色。
func (r *VoiceRegistry) Select(uri string) error {
	uri = strings.TrimSpace(uri)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !containsVoice(r.voices, uri) {
		return fmt.Errorf("%w: %q", ErrVoiceNotFound, uri)
	}
	r.selected = uri
	r.userChosen = true
	return nil
}

// Restore 用已保存的用户设置预置选择，可以早于第一次 Refresh。
func (r *VoiceRegistry) Restore(uri string) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = uri
	r.userChosen = true
}

// Selected 返回当前选中且仍在列表中的音色。
func (r *VoiceRegistry) Selected() (speech.Voice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.voices {
		if v.URI == r.selected {
			return v, true
		}
	}
	return speech.Voice{}, false
}

// SelectedURI 返回选中的音色 URI，即使该音色暂不在列表中。
func (r *VoiceRegistry) SelectedURI() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected
}

func (r *VoiceRegistry) Voices() []speech.Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneVoices(r.voices)
}

func containsVoice(voices []speech.Voice, uri string) bool {
	if uri == "" {
		return false
	}
	for _, v := range voices {
		if v.URI == uri {
			return true
		}
	}
	return false
}

func cloneVoices(voices []speech.Voice) []speech.Voice {
	out := make([]speech.Voice, len(voices))
	copy(out, voices)
	return out
}
