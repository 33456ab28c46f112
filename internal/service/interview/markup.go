package interview

import "strings"

// stripMarkup 去掉模型输出里的强调星号。
func stripMarkup(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
}
