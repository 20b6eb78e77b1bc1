package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neuroai/neurochat/internal/status"
)

// ErrBackendOffline is returned by a one-shot status check that fails
var ErrBackendOffline = errors.New("backend is offline")

// NewStatusCmd creates the backend availability command
func NewStatusCmd(deps *Dependencies) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the backend is online",
		Long: `Ping the backend once and print online or offline.

With --watch the backend is pinged every poll interval (5s by default) and a
line is printed each time the status or model changes, until Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), deps, watch, interval)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval for --watch (default from settings)")
	return cmd
}

func runStatus(ctx context.Context, deps *Dependencies, watch bool, interval time.Duration) error {
	s, err := deps.setup()
	if err != nil {
		return err
	}
	defer s.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	if !watch {
		r := status.Check(ctx, s.client)
		printStatus(deps.Stdout, s.client.BaseURL(), r, false)
		if r.Status != status.Online {
			if r.Err != nil {
				s.logger.Debug().Err(r.Err).Msg("status check failed")
			}
			return ErrBackendOffline
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := status.NewPoller(s.client)
	poller.Logger = s.logger
	poller.Interval = s.cfg.PollInterval.Std()
	if interval > 0 {
		poller.Interval = interval
	}

	var last status.Result
	first := true
	poller.OnResult = func(r status.Result) {
		if !first && r.Status == last.Status && r.ModelMode == last.ModelMode {
			return
		}
		first = false
		last = r
		printStatus(deps.Stdout, s.client.BaseURL(), r, true)
	}

	err = poller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printStatus writes one status line, optionally prefixed with the check time
func printStatus(out io.Writer, baseURL string, r status.Result, timestamp bool) {
	dot := lipgloss.NewStyle().Foreground(r.Status.Color()).Render("●")
	label := lipgloss.NewStyle().Foreground(r.Status.Color()).Bold(true).Render(r.Status.String())
	dim := lipgloss.NewStyle().Foreground(colorTextDim)

	line := fmt.Sprintf("%s %s %s", dot, label, dim.Render(baseURL))
	if r.ModelMode != "" {
		line += dim.Render(" • " + r.ModelMode)
	}
	if timestamp {
		line = dim.Render(r.At.Format("15:04:05")) + " " + line
	}
	fmt.Fprintln(out, line)
}
