package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
	"zh": "Simplified Chinese",
}

// Translate 把界面文案翻译成目标语言，只返回译文。
func (s *Service) Translate(ctx context.Context, text, language string) (string, error) {
	name, ok := languageNames[strings.ToLower(language)]
	if !ok {
		name = language
	}

	instructions := fmt.Sprintf("Translate the user's text into %s. It is a short string from a mobile app interface. "+
		"Keep placeholders, numbers and punctuation. Reply with the translation only, without quotes or explanations.", name)

	started := time.Now()
	translated, err := s.runTask(ctx, instructions, text)
	if err == nil && translated == "" {
		err = fmt.Errorf("empty model response")
	}
	s.metrics.ObserveCall("translate", time.Since(started), err)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return translated, nil
}
