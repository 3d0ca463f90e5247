package prompts

import "fmt"

// Prompt is a rendered catalog entry ready to send.
type Prompt struct {
	Name       PromptName
	Version    int
	Mode       Mode
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// Label identifies the catalog entry in logs, e.g. "quiz_questions@v2".
func (p Prompt) Label() string {
	return fmt.Sprintf("%s@v%d", p.Name, p.Version)
}
