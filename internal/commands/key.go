package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/models"
)

// NewKeyCmd creates the API key command
func NewKeyCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Send a Gemini API key to the backend",
		Long: `Read a Gemini API key without echoing it and send it to the backend.

The key can also be piped: echo "$GEMINI_API_KEY" | neurochat key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKey(cmd.Context(), deps)
		},
	}
}

func runKey(ctx context.Context, deps *Dependencies) error {
	if deps.ReadSecret == nil {
		return fmt.Errorf("no way to read the API key")
	}

	key, err := deps.ReadSecret("Gemini API key: ")
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.client.SetConfig(ctx, models.ConfigUpdate{APIKey: &key}); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to save API key"))
		return fmt.Errorf("failed to save API key: %w", err)
	}

	s.logger.Info().Msg("api key updated")
	fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ API key saved"))
	return nil
}
