package prompts

var schemas = map[string]func() map[string]any{
	"video_storyboard": StoryboardSchema,
	"quiz_questions":   QuizQuestionsSchema,
}

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func IntSchema() map[string]any {
	return map[string]any{"type": "integer"}
}

func EnumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

// Strict structured outputs need every property listed in required and
// additionalProperties=false on every object.
func object(properties map[string]any) map[string]any {
	req := make([]string, 0, len(properties))
	for k := range properties {
		req = append(req, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             req,
		"additionalProperties": false,
	}
}

func StoryboardSchema() map[string]any {
	slide := object(map[string]any{
		"title":   map[string]any{"type": "string"},
		"bullets": StringArraySchema(),
		"code":    map[string]any{"type": "string"},
		"seconds": IntSchema(),
	})
	return object(map[string]any{
		"slides": map[string]any{"type": "array", "items": slide},
	})
}

func QuizQuestionsSchema() map[string]any {
	q := object(map[string]any{
		"question":    map[string]any{"type": "string"},
		"options":     StringArraySchema(),
		"answer":      map[string]any{"type": "string"},
		"category":    map[string]any{"type": "string"},
		"difficulty":  map[string]any{"type": "integer", "enum": []any{1, 2, 3}},
		"explanation": map[string]any{"type": "string"},
	})
	return object(map[string]any{
		"questions": map[string]any{"type": "array", "items": q},
	})
}
