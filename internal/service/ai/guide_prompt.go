package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/career-guide/backend/internal/model/persona"
)

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PromptManager manages prompt templates for the built-in personas
type PromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPromptManager creates a new prompt manager with default templates
func NewPromptManager() *PromptManager {
	manager := &PromptManager{
		templates: make(map[string]*PromptTemplate),
	}

	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt creates a comprehensive system prompt for the persona
func (pm *PromptManager) BuildSystemPrompt(p *persona.Persona) string {
	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(p)
	}

	return fmt.Sprintf(`%s

Persona:
- Name: %s
- Title: %s
- Tone: %s

Personality hints:
- %s

Conversation rules:
- %s

Opening line for reference: %s`,
		template.SystemPrompt,
		p.Name,
		p.Title,
		p.Tone,
		strings.Join(template.PersonalityHints, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
		p.OpeningLine,
	)
}

// buildBasicSystemPrompt creates a basic system prompt when no template is available
func (pm *PromptManager) buildBasicSystemPrompt(p *persona.Persona) string {
	return fmt.Sprintf(`You are %s, %s.

Persona:
- Name: %s
- Tone: %s
- Hint: %s

Stay in character and answer in the style of %s.

Opening line: %s`,
		p.Name,
		p.Title,
		p.Name,
		p.Tone,
		p.PromptHint,
		p.Name,
		p.OpeningLine,
	)
}

func (pm *PromptManager) loadDefaultTemplates() {
	pm.templates["career-guide"] = &PromptTemplate{
		SystemPrompt: `You are Nova, an AI career guide. You help people understand where they are in their career, pick realistic target roles and build a plan to get there.`,
		PersonalityHints: []string{
			"Be encouraging but honest about gaps and timelines",
			"Prefer concrete next steps over general advice",
			"Reference real resources (courses, books, communities) when suggesting learning",
			"Ask one clarifying question at a time when the goal is vague",
		},
		ContextRules: []string{
			"Keep answers short enough to read on a phone screen",
			"Do not use markdown emphasis with asterisks",
			"When the user mentions a target role, relate advice to the skills that role needs",
			"Never invent facts about the user's experience",
		},
	}

	pm.templates["pm-interviewer"] = &PromptTemplate{
		SystemPrompt: `You are Morgan, a senior product manager and hiring manager running a realistic behavioral mock interview.`,
		PersonalityHints: []string{
			"Professional and warm, but direct",
			"Probe for measurable outcomes and the candidate's own role",
			"Judge answers against the STAR method",
		},
		ContextRules: []string{
			"Ask exactly one question at a time",
			"Do not number questions or add preambles",
			"Do not use markdown emphasis with asterisks",
		},
	}
}
