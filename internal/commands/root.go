package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the neurochat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}

	var opts askOptions

	cmd := &cobra.Command{
		Use:   "neurochat [message]",
		Short: "Terminal client for the Neuro chat backend",
		Long: `neurochat talks to a local Neuro chat backend. Without arguments it
opens the interactive chat; with a message it asks once and prints the reply.

Examples:
  neurochat                             Start interactive chat
  neurochat "Hello there"               Send a single message
  cat question.md | neurochat           Read the message from stdin
  neurochat status --watch              Follow backend availability
  neurochat model gemini                Switch the backend to the Gemini API
  neurochat history --export md -o chat.md
  neurochat --url http://10.0.0.5:5000  Use another backend`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "neurochat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			text, err := readMessage(deps.Stdin, opts.file, args)
			if err != nil {
				return err
			}
			if text == "" {
				return runChat(cmd.Context(), deps)
			}
			return runAsk(cmd.Context(), deps, text, opts)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().StringVar(&deps.flags.url, "url", "", "Backend base URL (overrides settings)")
	cmd.PersistentFlags().BoolVar(&deps.flags.noSound, "no-sound", false, "Disable the reveal tone")
	cmd.PersistentFlags().BoolVar(&deps.flags.verbose, "verbose", false, "Log at debug level")
	addAskFlags(cmd, &opts)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewAskCmd(deps))
	cmd.AddCommand(NewStatusCmd(deps))
	cmd.AddCommand(NewHistoryCmd(deps))
	cmd.AddCommand(NewModelCmd(deps))
	cmd.AddCommand(NewKeyCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

func Execute() {
	if err := NewRootCmd(NewDependencies()).Execute(); err != nil {
		os.Exit(1)
	}
}
