package render

import "strings"

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	return renderers.render(content, opts)
}

// Response renders a runner response for the output area. When markdown is
// disabled, or rendering fails, the text is returned unchanged.
func Response(text string, markdown bool, opts Options) string {
	if !markdown || strings.TrimSpace(text) == "" {
		return text
	}

	rendered, err := Markdown(text, opts)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
