package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultOpeningPrompt = "You are conducting a mock interview for a senior product manager role. Ask the first behavioral question."

// InterviewProfile 描述一场模拟面试的角色设定与兜底文案。
type InterviewProfile struct {
	Role          string    `yaml:"role"`
	PersonaID     string    `yaml:"personaId"`
	OpeningPrompt string    `yaml:"openingPrompt"`
	Fallbacks     Fallbacks `yaml:"fallbacks"`
}

// Fallbacks 是协作方调用失败时替换显示的文本。
type Fallbacks struct {
	Opening  string `yaml:"opening"`
	Feedback string `yaml:"feedback"`
	Summary  string `yaml:"summary"`
}

// DefaultInterviewProfile 返回内置的高级产品经理面试设定。
func DefaultInterviewProfile() InterviewProfile {
	return InterviewProfile{
		Role:          "senior product manager",
		PersonaID:     "pm-interviewer",
		OpeningPrompt: defaultOpeningPrompt,
		Fallbacks: Fallbacks{
			Opening:  "Tell me about a product decision you made with incomplete data.",
			Feedback: "Sorry, I couldn't evaluate that answer. Please try again.",
			Summary:  "Sorry, the interview summary could not be generated this time.",
		},
	}
}

// LoadInterviewProfile 读取 YAML 面试设定；path 为空时使用内置默认值。
// 文件中缺省的字段同样回落到默认值。
func LoadInterviewProfile(path string) (InterviewProfile, error) {
	profile := DefaultInterviewProfile()
	if strings.TrimSpace(path) == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return InterviewProfile{}, fmt.Errorf("read interview profile: %w", err)
	}

	var loaded InterviewProfile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return InterviewProfile{}, fmt.Errorf("parse interview profile %s: %w", path, err)
	}

	mergeString(&profile.Role, loaded.Role)
	mergeString(&profile.PersonaID, loaded.PersonaID)
	mergeString(&profile.OpeningPrompt, loaded.OpeningPrompt)
	mergeString(&profile.Fallbacks.Opening, loaded.Fallbacks.Opening)
	mergeString(&profile.Fallbacks.Feedback, loaded.Fallbacks.Feedback)
	mergeString(&profile.Fallbacks.Summary, loaded.Fallbacks.Summary)

	return profile, nil
}

func mergeString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
