// Package render turns assistant replies into styled terminal output.
package render

// Options configures the markdown renderer
type Options struct {
	// Width is the word-wrap column (default: 80)
	Width int

	// Style is a glamour standard style ("dark", "light", "dracula", ...)
	// or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the options used when settings say nothing
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy with the given width. Non-positive widths are ignored.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns a copy with the given style
func (o Options) WithStyle(style string) Options {
	if style != "" {
		o.Style = style
	}
	return o
}

// MarkdownStyles lists the glamour standard styles offered in settings
func MarkdownStyles() []string {
	return []string{"dark", "light", "dracula", "tokyo-night", "pink", "notty", "ascii"}
}
