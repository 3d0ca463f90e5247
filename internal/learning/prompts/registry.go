package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Template struct {
	Name       PromptName
	Version    int
	Mode       Mode
	SchemaName string
	Schema     func() map[string]any
	System     func(Input) string
	User       func(Input) string
	Validate   Validator
}

var (
	registryOnce sync.Once
	registryErr  error
	registry     = map[PromptName]Template{}
)

type catalog struct {
	Prompts []Spec `yaml:"prompts"`
}

// LoadCatalog parses a YAML catalog into templates.
func LoadCatalog(raw []byte) (map[PromptName]Template, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	out := make(map[PromptName]Template, len(c.Prompts))
	for _, s := range c.Prompts {
		t, err := MakeTemplate(s)
		if err != nil {
			return nil, err
		}
		if _, dup := out[t.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt %s", t.Name)
		}
		out[t.Name] = t
	}
	return out, nil
}

func ensureRegistry() error {
	registryOnce.Do(func() {
		registry, registryErr = LoadCatalog(catalogYAML)
	})
	return registryErr
}

// Build returns a Prompt ready to pass to the OpenAI client.
func Build(name PromptName, in Input) (Prompt, error) {
	if err := ensureRegistry(); err != nil {
		return Prompt{}, err
	}
	t, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	p := Prompt{
		Name:       t.Name,
		Version:    t.Version,
		Mode:       t.Mode,
		SchemaName: strings.TrimSpace(t.SchemaName),
		System:     strings.TrimSpace(t.System(in)),
		User:       strings.TrimSpace(t.User(in)),
	}
	if t.Schema != nil {
		p.Schema = t.Schema()
	}
	return p, nil
}
