package prompts

import (
	"fmt"
	"strings"
	"testing"
)

func TestCatalogLoads(t *testing.T) {
	reg, err := LoadCatalog(catalogYAML)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	for _, name := range []PromptName{PromptVideoScript, PromptVideoStoryboard, PromptQuizQuestions, PromptQuizFeedback} {
		if _, ok := reg[name]; !ok {
			t.Fatalf("missing prompt %s", name)
		}
	}
}

func TestBuildRendersInput(t *testing.T) {
	p, err := Build(PromptQuizQuestions, Input{Topic: "List comprehensions", QuestionCount: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Mode != ModeJSON || p.Schema == nil || p.SchemaName != "quiz_questions" {
		t.Fatalf("unexpected prompt meta: %+v", p)
	}
	if !strings.Contains(p.User, `"List comprehensions"`) || !strings.Contains(p.User, "Write 5 questions") {
		t.Fatalf("user prompt not rendered: %s", p.User)
	}
	if p.Label() != fmt.Sprintf("%s@v%d", PromptQuizQuestions, p.Version) {
		t.Fatalf("unexpected label %q", p.Label())
	}
}

func TestBuildValidatesRequiredFields(t *testing.T) {
	if _, err := Build(PromptVideoStoryboard, Input{Topic: "Loops"}); err == nil {
		t.Fatal("expected missing script error")
	}
	if _, err := Build(PromptVideoScript, Input{}); err == nil {
		t.Fatal("expected missing topic error")
	}
	if _, err := Build(PromptName("nope"), Input{Topic: "x"}); err == nil {
		t.Fatal("expected unknown prompt error")
	}
}

func TestLoadCatalogRejectsBadSpecs(t *testing.T) {
	cases := map[string]string{
		"unknown schema": "prompts:\n  - name: a\n    version: 1\n    mode: json\n    schema_name: nope\n",
		"bad version":    "prompts:\n  - name: a\n    version: 0\n",
		"duplicate":      "prompts:\n  - name: a\n    version: 1\n  - name: a\n    version: 1\n",
		"unknown field":  "prompts:\n  - name: a\n    version: 1\n    requires: [color]\n",
	}
	for name, raw := range cases {
		if _, err := LoadCatalog([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSchemasAreStrict(t *testing.T) {
	s := QuizQuestionsSchema()
	if s["additionalProperties"] != false {
		t.Fatal("top-level schema must disallow extra keys")
	}
	items := s["properties"].(map[string]any)["questions"].(map[string]any)["items"].(map[string]any)
	if len(items["required"].([]string)) != 6 {
		t.Fatalf("every question field must be required: %v", items["required"])
	}
}
