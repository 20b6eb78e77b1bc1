package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/audio"
	"github.com/neuroai/neurochat/internal/config"
	apierrors "github.com/neuroai/neurochat/internal/errors"
	"github.com/neuroai/neurochat/internal/render"
	"github.com/neuroai/neurochat/internal/reveal"
	"github.com/neuroai/neurochat/internal/tui"
)

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	replyStyle = lipgloss.NewStyle().
			Foreground(colorText)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// askOptions are the flags of a single-message request
type askOptions struct {
	file     string
	output   string
	raw      bool
	markdown bool
	copy     bool
}

func addAskFlags(cmd *cobra.Command, opts *askOptions) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the message from file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print only the reply text, without animation")
	cmd.Flags().BoolVarP(&opts.markdown, "markdown", "m", false, "Render the reply as markdown instead of revealing it")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the reply to the clipboard")
}

// NewAskCmd creates the single-message command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Long: `Send one message to the backend and reveal the reply on stdout.

The message is taken from the argument, from -f, or from stdin.

Examples:
  neurochat ask "What can you do?"
  neurochat ask -f prompt.md --raw > reply.txt
  echo "hi" | neurochat ask -m`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readMessage(deps.Stdin, opts.file, args)
			if err != nil {
				return err
			}
			if text == "" {
				return apierrors.ErrEmptyMessage
			}
			return runAsk(cmd.Context(), deps, text, opts)
		},
	}

	addAskFlags(cmd, &opts)
	return cmd
}

// readMessage picks the message from a file, the argument or piped stdin
func readMessage(stdin io.Reader, file string, args []string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if hasPipedInput(stdin) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}

// hasPipedInput reports whether r carries data rather than a terminal
func hasPipedInput(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func runAsk(ctx context.Context, deps *Dependencies, text string, opts askOptions) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	decorated := !opts.raw && deps.interactive()

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Waiting for Neuro")
		spin.start()
	}

	startTime := time.Now()
	reply, err := s.client.SendChat(ctx, text)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		s.logger.Warn().Err(err).Msg("ask failed")
		if !opts.raw {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Chat failed"))
		}
		return fmt.Errorf("chat failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Reply received")
	}
	s.logger.Debug().
		Dur("took", time.Since(startTime)).
		Int("runes", len([]rune(reply))).
		Msg("ask completed")

	if opts.copy || s.cfg.CopyToClipboard {
		copyReply(deps, reply, !opts.raw)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.raw {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output),
			)
			fmt.Fprintln(deps.Stderr, successMsg)
		}
		return nil
	}

	switch {
	case opts.raw:
		fmt.Fprint(deps.Stdout, reply)
		return nil
	case opts.markdown:
		return printMarkdownReply(deps, s.cfg, reply)
	case !decorated:
		fmt.Fprintln(deps.Stdout, reply)
		return nil
	}

	return revealReply(ctx, deps.Stdout, reply, s.cfg.RevealDelay.Std(), audio.NewToggle(s.beeper, s.cfg.Sound))
}

// revealReply writes reply one rune per delay, sounding the tone on
// every other rune. Interrupting prints the rest at once.
func revealReply(ctx context.Context, out io.Writer, reply string, delay time.Duration, beeper audio.Beeper) error {
	fmt.Fprintln(out, assistantLabelStyle.Render("✦ Neuro"))

	runes := []rune(reply)
	shown := 0
	err := reveal.Play(ctx, reply, delay, func(f reveal.Frame) {
		if f.Index < 0 {
			return
		}
		fmt.Fprint(out, replyStyle.Render(string(runes[f.Index])))
		shown = f.Index + 1
		if f.Tone {
			beeper.Beep()
		}
	})

	if errors.Is(err, context.Canceled) {
		fmt.Fprint(out, replyStyle.Render(string(runes[shown:])))
		err = nil
	}
	fmt.Fprintln(out)
	return err
}

func printMarkdownReply(deps *Dependencies, cfg config.Config, reply string) error {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	rendered := render.Reply(reply, render.OptionsFromConfig(cfg).WithWidth(contentWidth))

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Neuro"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

func copyReply(deps *Dependencies, reply string, report bool) {
	if deps.Copy == nil {
		return
	}
	if err := deps.Copy(reply); err != nil {
		if report {
			warnMsg := lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		}
		return
	}
	if report {
		fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
	}
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", action, err))
}
