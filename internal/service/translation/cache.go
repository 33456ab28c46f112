package translation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zhouzirui/career-guide/backend/internal/observability"
)

// Translator 是外部翻译协作方，只返回译文。
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

type cacheKey struct {
	text     string
	language string
}

// Cache 以 (text, language) 为键缓存译文，进程生命周期内有效，不淘汰。
type Cache struct {
	translator   Translator
	baseLanguage string
	metrics      *observability.Metrics

	timeout time.Duration

	mu      sync.RWMutex
	entries map[cacheKey]string
	group   singleflight.Group
}

// defaultTimeout 限制一次共享的翻译调用
const defaultTimeout = 30 * time.Second

func NewCache(translator Translator, baseLanguage string, metrics *observability.Metrics) *Cache {
	return &Cache{
		translator:   translator,
		baseLanguage: normalizeLanguage(baseLanguage),
		metrics:      metrics,
		timeout:      defaultTimeout,
		entries:      make(map[cacheKey]string),
	}
}

// Translate 返回 text 在 language 下的译文。
// 基础语言直接原样返回；协作方失败时返回原文和错误，且不写入缓存。
func (c *Cache) Translate(ctx context.Context, text, language string) (string, error) {
	lang := normalizeLanguage(language)
	if lang == "" || lang == c.baseLanguage || strings.TrimSpace(text) == "" {
		c.metrics.ObserveTranslation("passthrough")
		return text, nil
	}

	key := cacheKey{text: text, language: lang}
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.metrics.ObserveTranslation("hit")
		return cached, nil
	}

	// 同一个键的并发未命中只触发一次协作方调用。共享调用不跟随任何一个调用方取消，
	// 每个调用方只按自己的 ctx 放弃等待。
	ch := c.group.DoChan(lang+"\x00"+text, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		translated, err := c.translator.Translate(callCtx, text, lang)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = translated
		c.mu.Unlock()
		return translated, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}
	if res.Err != nil {
		c.metrics.ObserveTranslation("error")
		log.Printf("[translate] %s failed: %v", lang, res.Err)
		return text, fmt.Errorf("translate to %s: %w", lang, res.Err)
	}

	c.metrics.ObserveTranslation("miss")
	return res.Val.(string), nil
}

// TranslateAll 按顺序翻译一组界面文案，遇到失败的条目保留原文并返回第一个错误。
func (c *Cache) TranslateAll(ctx context.Context, texts []string, language string) ([]string, error) {
	out := make([]string, len(texts))
	var firstErr error
	for i, text := range texts {
		translated, err := c.Translate(ctx, text, language)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out[i] = translated
	}
	return out, firstErr
}

// Len 返回已缓存条目数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// BaseLanguage 返回无需翻译的基础语言。
func (c *Cache) BaseLanguage() string {
	return c.baseLanguage
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
