package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	service "github.com/okian/dfspersona/internal/app"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

// fileResult is the outcome of analyzing one file.
type fileResult struct {
	Path     string          `json:"path"`
	Analysis *types.Analysis `json:"analysis,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func newAnalyzeCommand() *cobra.Command {
	var (
		jobs     int
		now      string
		asJSON   bool
		halfLife float64
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Score contest history exports and print the persona report",
		Example: `  dfsprofile analyze history.csv
  dfsprofile analyze --json --now 2024-11-01T00:00:00Z dk.csv fd.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseInstant(now, time.Now())
			if err != nil {
				return fmt.Errorf("--now: %w", err)
			}
			svc := service.New(
				service.WithClock(func() time.Time { return at }),
				service.WithRecencyHalfLife(halfLife),
				service.WithLogger(logger.Get().Named("analyze")),
			)

			results, err := analyzeFiles(cmd.Context(), svc, args, jobs)
			if err != nil {
				return err
			}

			if asJSON {
				if err := writeIndented(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				for i, r := range results {
					if i > 0 {
						_, _ = fmt.Fprintln(cmd.OutOrStdout())
					}
					if r.Analysis == nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", color.RedString("error"), r.Path, r.Error)
						continue
					}
					renderReport(cmd.OutOrStdout(), r.Path, r.Analysis)
				}
			}

			failed := 0
			for _, r := range results {
				if r.Analysis == nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files analyzed in parallel")
	cmd.Flags().StringVar(&now, "now", "", "reference time for recency (RFC3339 or YYYY-MM-DD, default now)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of the report")
	cmd.Flags().Float64Var(&halfLife, "half-life", 90, "recency half-life in days")
	return cmd
}

// analyzeFiles runs Parse over paths with at most jobs in flight. Results keep
// the input order; per-file failures are reported in the result, not returned.
func analyzeFiles(ctx context.Context, svc *service.Service, paths []string, jobs int) ([]fileResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			body, err := os.ReadFile(path)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			a, err := svc.Parse(gctx, filepath.Base(path), body)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				results[i].Error = err.Error()
				return nil
			}
			results[i].Analysis = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
