package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Build metadata, overridable with -ldflags "-X".
var (
	Version   = "1.0.0"
	GitCommit = ""
	BuildDate = ""
)

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

func newVersionCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "pretty":
				renderVersion(cmd.OutOrStdout(), info)
				return nil
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersion(w io.Writer, info versionInfo) {
	_, _ = fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("dfsprofile"), color.GreenString(info.Version))
	if info.GitCommit != "" {
		_, _ = fmt.Fprintf(w, "  commit: %s\n", info.GitCommit)
	}
	if info.BuildDate != "" {
		_, _ = fmt.Fprintf(w, "  built:  %s\n", info.BuildDate)
	}
	_, _ = fmt.Fprintf(w, "  go:     %s\n", info.GoVersion)
}
