// Package cli implements the dfsprofile command line tool.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/dfspersona/pkg/logger"
)

// NewRootCommand builds the dfsprofile command tree.
func NewRootCommand() *cobra.Command {
	var (
		colorMode string
		logLevel  string
	)
	root := &cobra.Command{
		Use:   "dfsprofile",
		Short: "Detect DFS player personas from DraftKings and FanDuel exports",
		Long: `dfsprofile analyzes DraftKings or FanDuel contest history exports, scores
the player against the bettor, fantasy and stats nerd personas, and derives
pattern weights for content recommendations.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}
			return applyColorMode(colorMode)
		},
	}

	root.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newAnalyzeCommand(),
		newGenerateCommand(),
		newUploadCommand(),
		newVersionCommand(),
	)
	return root
}

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}
