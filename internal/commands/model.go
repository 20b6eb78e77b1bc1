package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/models"
)

// NewModelCmd creates the backend model selection command
func NewModelCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:       "model [local|gemini]",
		Short:     "Show or switch the model used by the backend",
		Long:      `Without arguments, print the model the backend currently uses. With "local" or "gemini", switch to it.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"local", "gemini"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runModelShow(cmd.Context(), deps)
			}
			useAlternate, err := parseModelArg(args[0])
			if err != nil {
				return err
			}
			return runModelSet(cmd.Context(), deps, useAlternate)
		},
	}
}

// parseModelArg maps "local" and "gemini" onto the use_gemini flag
func parseModelArg(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "local":
		return false, nil
	case "gemini":
		return true, nil
	default:
		return false, fmt.Errorf("unknown model %q (use local or gemini)", arg)
	}
}

func runModelShow(ctx context.Context, deps *Dependencies) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.client.GetConfig(ctx)
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to read backend config"))
		return fmt.Errorf("failed to read backend config: %w", err)
	}

	value := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	dim := lipgloss.NewStyle().Foreground(colorTextDim)

	fmt.Fprintf(deps.Stdout, "%s %s\n", dim.Render("Model:          "), value.Render(models.ModeName(cfg.UseAlternateModel)))
	fmt.Fprintf(deps.Stdout, "%s %s\n", dim.Render("Gemini API key: "), value.Render(yesNo(cfg.HasAPIKey, "set", "not set")))
	fmt.Fprintf(deps.Stdout, "%s %s\n", dim.Render("Local model:    "), value.Render(yesNo(cfg.ModelAvailable, "available", "unavailable")))
	return nil
}

func runModelSet(ctx context.Context, deps *Dependencies, useAlternate bool) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.client.SetConfig(ctx, models.ConfigUpdate{UseAlternateModel: &useAlternate})
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to switch model"))
		return fmt.Errorf("failed to switch model: %w", err)
	}

	mode := models.ModeName(useAlternate)
	s.logger.Info().Str("mode", mode).Msg("model switched")
	fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Switched to "+mode))

	if useAlternate && cfg != nil && !cfg.HasAPIKey {
		fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorWarning).Render(
			"⚠ No Gemini API key is set. Run 'neurochat key' to add one",
		))
	}
	return nil
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
