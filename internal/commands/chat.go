package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/render"
	"github.com/neuroai/neurochat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat with the Neuro backend.

Replies are revealed one character at a time. Press Esc to show the rest
at once, Ctrl+T to switch the backend model and Ctrl+L to clear the
conversation. Type /help for the slash commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.TUITheme != "" && render.SetTUITheme(s.cfg.TUITheme) {
		tui.UpdateTheme()
	}

	s.logger.Info().Str("backend", s.client.BaseURL()).Msg("starting chat")

	err = deps.TUI.RunChat(tui.Options{
		Context: ctx,
		Client:  s.client,
		Config:  s.cfg,
		Logger:  s.logger,
		Beeper:  s.beeper,
		Copy:    deps.Copy,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("chat ended with error")
	}
	return err
}
