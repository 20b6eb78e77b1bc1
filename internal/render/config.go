package render

import (
	"os"

	"github.com/neuroai/neurochat/internal/config"
)

// OptionsFromConfig maps client settings onto renderer options.
// GLAMOUR_STYLE, when set, wins over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions().WithStyle(cfg.Markdown.Style)
	opts.EnableEmoji = cfg.Markdown.EnableEmoji
	opts.PreserveNewLines = cfg.Markdown.PreserveNewLines

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}
