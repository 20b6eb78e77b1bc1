package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Open configuration menu",
		Long:  `Interactive menu to configure neurochat's local settings (reveal tone, reveal speed, themes).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if path == "" {
				return fmt.Errorf("no config path available")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			return deps.TUI.RunConfig(cfg, path)
		},
	}
}
