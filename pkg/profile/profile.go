package profile

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Profile describes how the tutor behaves for one subject area.
type Profile struct {
	Subject      string            `yaml:"subject"`
	DisplayName  string            `yaml:"display_name"`
	SystemPrompt string            `yaml:"system_prompt"`
	Greeting     string            `yaml:"greeting"`
	Difficulties map[string]string `yaml:"difficulties"`
}

// DefaultSubject is used when a request names no subject or an unknown one.
const DefaultSubject = "general"

// DefaultDifficulty is used when a request names no difficulty level.
const DefaultDifficulty = "intermediate"

// Validate checks required fields of a loaded profile
func (p *Profile) Validate() error {
	if p.Subject == "" {
		return goerr.New("profile subject is empty")
	}
	if p.SystemPrompt == "" {
		return goerr.New("profile system prompt is empty", goerr.V("subject", p.Subject))
	}
	return nil
}

// Difficulty returns the descriptor for the given level, falling back to
// the intermediate descriptor and then to the level name itself.
func (p *Profile) Difficulty(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultDifficulty
	}
	if desc, ok := p.Difficulties[level]; ok {
		return desc
	}
	if desc, ok := p.Difficulties[DefaultDifficulty]; ok {
		return desc
	}
	return level
}
