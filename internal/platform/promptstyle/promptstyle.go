package promptstyle

import "strings"

const marker = "PYLEARN_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to system prompts. Prompts that already
// carry the marker are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are a patient Python instructor for the Python Learning Platform.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nIf an output format or schema is specified, output only that format.")
	b.WriteString("\nKeep code examples valid Python 3.")
	switch mode {
	case "json":
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	case "speech":
		b.WriteString("\nWrite for the ear: no markdown, no code fences, no bullet symbols.")
	default:
		b.WriteString("\nBe concise and structured when helpful.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
