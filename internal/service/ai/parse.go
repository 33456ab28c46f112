package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject 截取回复中第一个 { 到最后一个 } 之间的内容并解析。
// 模型常常把 JSON 包在 ```json 代码块里。
func extractJSONObject(content string, out any) error {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("missing json object")
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("decode json object: %w", err)
	}
	return nil
}
