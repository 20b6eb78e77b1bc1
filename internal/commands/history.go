package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/history"
	"github.com/neuroai/neurochat/internal/models"
	"github.com/neuroai/neurochat/internal/render"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	snippetStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// historyOptions are the flags of the history command
type historyOptions struct {
	export string
	output string
	search string
}

// NewHistoryCmd creates the backend memory command
func NewHistoryCmd(deps *Dependencies) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation kept by the backend",
		Long: `Print the conversation the backend remembers, search it, or export it.

Examples:
  neurochat history
  neurochat history --search docker
  neurochat history --export json -o chat.json
  neurochat history clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), deps, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.export, "export", "e", "", "Export format (md, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the export to file instead of stdout")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Only list messages containing text")

	cmd.AddCommand(newHistoryClearCmd(deps))
	return cmd
}

func newHistoryClearCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the backend memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd.Context(), deps)
		},
	}
}

func runHistory(ctx context.Context, deps *Dependencies, opts historyOptions) error {
	var format history.ExportFormat
	if opts.export != "" {
		f, err := history.ParseFormat(opts.export)
		if err != nil {
			return err
		}
		format = f
	}

	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	msgs, err := s.client.FetchHistory(ctx)
	if err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to load history"))
		return fmt.Errorf("failed to load history: %w", err)
	}

	if opts.search != "" {
		return printMatches(deps, history.Search(msgs, opts.search), opts.search)
	}

	if format != "" {
		data, err := history.NewTranscript(s.client.BaseURL(), msgs).Export(format)
		if err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		if opts.output == "" {
			_, err = deps.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Exported %d messages to %s", len(msgs), opts.output),
		))
		return nil
	}

	if len(msgs) == 0 {
		fmt.Fprintln(deps.Stdout, "No messages yet.")
		return nil
	}

	decorated := deps.interactive()
	renderOpts := render.OptionsFromConfig(s.cfg).WithWidth(getTerminalWidth() - 4)

	for i, msg := range msgs {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		if !decorated {
			fmt.Fprintf(deps.Stdout, "%s: %s\n", roleName(msg.Role), msg.Content)
			continue
		}
		fmt.Fprintln(deps.Stdout, labelStyle(msg.Role).Render(roleName(msg.Role)))
		if msg.Role == models.RoleAssistant {
			fmt.Fprintln(deps.Stdout, render.Reply(msg.Content, renderOpts))
		} else {
			fmt.Fprintln(deps.Stdout, replyStyle.Render(msg.Content))
		}
	}
	return nil
}

func printMatches(deps *Dependencies, matches []history.Match, query string) error {
	if len(matches) == 0 {
		fmt.Fprintf(deps.Stdout, "No messages match %q.\n", query)
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(deps.Stdout, "[%d] %s %s\n",
			m.Index+1,
			labelStyle(m.Role).Render(roleName(m.Role)+":"),
			snippetStyle.Render(strings.ReplaceAll(m.Snippet, "\n", " ")),
		)
	}
	return nil
}

func runHistoryClear(ctx context.Context, deps *Dependencies) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.client.ClearHistory(ctx); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Failed to clear history"))
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info().Msg("backend memory cleared")
	fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Conversation cleared"))
	return nil
}

func roleName(role models.Role) string {
	if label := (models.Message{Role: role}).Label(); label != "" {
		return label
	}
	return string(role)
}

func labelStyle(role models.Role) lipgloss.Style {
	if role == models.RoleAssistant {
		return assistantLabelStyle
	}
	return userLabelStyle
}
