package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zhouzirui/career-guide/backend/internal/model/profile"
)

const skillInstructions = `You are a career analyst. Compare the user's current skills and experience with what the target role requires.
Output requirements: return only one JSON object with two fields.
skillGaps: an array of objects with skill (short name) and reason (one sentence why it matters for the role).
learningPlan: an array of objects with resource (name of a course, book or project), description (one sentence) and type (one of course, book, project, article, video).
List at most 6 gaps and 8 learning items, most important first. No other text.`

// AnalyzeSkills 分析目标岗位的技能差距并给出学习计划。
func (s *Service) AnalyzeSkills(ctx context.Context, req profile.SkillRequest) (profile.SkillAnalysis, error) {
	if strings.TrimSpace(req.TargetRole) == "" {
		return profile.SkillAnalysis{}, fmt.Errorf("target role is required")
	}

	skills := "none listed"
	if len(req.CurrentSkills) > 0 {
		skills = strings.Join(req.CurrentSkills, ", ")
	}
	experience := strings.TrimSpace(req.Experience)
	if experience == "" {
		experience = "not provided"
	}
	input := fmt.Sprintf("Target role: %s\nCurrent skills: %s\nExperience: %s", req.TargetRole, skills, experience)

	started := time.Now()
	content, err := s.runTask(ctx, skillInstructions, input)
	s.metrics.ObserveCall("analyze_skills", time.Since(started), err)
	if err != nil {
		return profile.SkillAnalysis{}, fmt.Errorf("analyze skills: %w", err)
	}

	var analysis profile.SkillAnalysis
	if err := extractJSONObject(content, &analysis); err != nil {
		return profile.SkillAnalysis{}, fmt.Errorf("analyze skills: %w", err)
	}
	analysis.TargetRole = req.TargetRole
	return analysis, nil
}
