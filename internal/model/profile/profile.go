package profile

import "time"

// Settings captures per-user preferences shared by every screen.
type Settings struct {
	UserID    string    `json:"userId"`
	Language  string    `json:"language"`
	VoiceURI  string    `json:"voiceUri,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SkillGap names a skill the user lacks for the target role.
type SkillGap struct {
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

// LearningItem is one step of the learning plan.
type LearningItem struct {
	Resource    string `json:"resource"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// SkillAnalysis is produced by the skill-analysis collaborator.
type SkillAnalysis struct {
	TargetRole   string         `json:"targetRole,omitempty"`
	SkillGaps    []SkillGap     `json:"skillGaps"`
	LearningPlan []LearningItem `json:"learningPlan"`
}

// SkillRequest is the input for a skill analysis.
type SkillRequest struct {
	TargetRole    string   `json:"targetRole"`
	CurrentSkills []string `json:"currentSkills"`
	Experience    string   `json:"experience"`
}

// Goal is a dashboard entry derived from a skill gap.
type Goal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Skill     string    `json:"skill"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserData is the derived data shown on the goals dashboard.
type UserData struct {
	UserID    string         `json:"userId"`
	Analysis  *SkillAnalysis `json:"analysis,omitempty"`
	Goals     []Goal         `json:"goals"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
