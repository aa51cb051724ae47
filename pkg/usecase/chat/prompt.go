package chat

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/profile"
)

//go:embed prompt/tutor.md
var tutorPromptRaw string

var tutorPromptTmpl = template.Must(template.New("tutor").Parse(tutorPromptRaw))

// buildSystemPrompt renders the system instruction from the subject profile,
// the difficulty descriptor and the assembled context block
func buildSystemPrompt(p *profile.Profile, difficulty, contextBlock string) (string, error) {
	var buf bytes.Buffer
	err := tutorPromptTmpl.Execute(&buf, map[string]string{
		"SystemPrompt": p.SystemPrompt,
		"Difficulty":   p.Difficulty(difficulty),
		"Context":      contextBlock,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render tutor prompt")
	}

	return buf.String(), nil
}
