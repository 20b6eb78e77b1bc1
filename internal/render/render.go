package render

import "strings"

// Markdown renders content with a reused glamour renderer
func Markdown(content string, opts Options) (string, error) {
	renderer, err := renderers.borrow(opts)
	if err != nil {
		return "", err
	}
	defer renderers.giveBack(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at the given width
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// Reply renders an assistant reply and falls back to the raw text when
// glamour fails. Surrounding blank lines added by glamour are trimmed.
func Reply(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
