package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Spec is the declaration format read from the catalog.
type Spec struct {
	Name       PromptName `yaml:"name"`
	Version    int        `yaml:"version"`
	Mode       Mode       `yaml:"mode"`
	SchemaName string     `yaml:"schema_name"`
	// Go templates using {{.Field}} from Input.
	System   string   `yaml:"system"`
	User     string   `yaml:"user"`
	Requires []string `yaml:"requires"`
}

type Validator func(Input) error

// MakeTemplate compiles a Spec into a Template.
func MakeTemplate(s Spec) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	mode := s.Mode
	if mode == "" {
		mode = ModeText
	}
	var schema func() map[string]any
	switch mode {
	case ModeText:
	case ModeJSON:
		if strings.TrimSpace(s.SchemaName) == "" {
			return Template{}, fmt.Errorf("missing schema name for %s", s.Name)
		}
		fn, ok := schemas[s.SchemaName]
		if !ok {
			return Template{}, fmt.Errorf("unknown schema %q for %s", s.SchemaName, s.Name)
		}
		schema = fn
	default:
		return Template{}, fmt.Errorf("invalid mode %q for %s", mode, s.Name)
	}

	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	render := func(t *template.Template, in Input) string {
		var b bytes.Buffer
		_ = t.Execute(&b, in)
		return strings.TrimSpace(b.String())
	}
	validators := make([]Validator, 0, len(s.Requires))
	for _, field := range s.Requires {
		v, ok := requireField(field)
		if !ok {
			return Template{}, fmt.Errorf("%s: unknown required field %q", s.Name, field)
		}
		validators = append(validators, v)
	}
	return Template{
		Name:       s.Name,
		Version:    s.Version,
		Mode:       mode,
		SchemaName: s.SchemaName,
		Schema:     schema,
		System:     func(in Input) string { return render(sysT, in) },
		User:       func(in Input) string { return render(userT, in) },
		Validate: func(in Input) error {
			for _, v := range validators {
				if err := v(in); err != nil {
					return err
				}
			}
			return nil
		},
	}, nil
}

func requireField(field string) (Validator, bool) {
	switch field {
	case "topic":
		return func(in Input) error {
			if strings.TrimSpace(in.Topic) == "" {
				return fmt.Errorf("missing topic")
			}
			return nil
		}, true
	case "script":
		return func(in Input) error {
			if strings.TrimSpace(in.Script) == "" {
				return fmt.Errorf("missing script")
			}
			return nil
		}, true
	case "question_count":
		return func(in Input) error {
			if in.QuestionCount <= 0 {
				return fmt.Errorf("question_count must be positive")
			}
			return nil
		}, true
	default:
		return nil, false
	}
}
