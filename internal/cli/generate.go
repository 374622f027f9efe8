package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/dfspersona/internal/domain/model"
)

func newGenerateCommand() *cobra.Command {
	var (
		personaName  string
		platformName string
		entries      int
		seed         uint64
		out          string
		end          string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic contest history export for a persona",
		Example: `  dfsprofile generate --persona bettor --entries 200 --out bettor.csv
  dfsprofile generate --persona stats_nerd --platform fanduel --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			persona, err := model.ParsePersona(personaName)
			if err != nil {
				return err
			}
			platform, err := model.ParsePlatform(platformName)
			if err != nil {
				return err
			}
			endAt, err := parseInstant(end, time.Now())
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			cfg := GenerateConfig{
				Persona:  persona,
				Platform: platform,
				Entries:  entries,
				Seed:     seed,
				End:      endAt,
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := GenerateCSV(w, cfg); err != nil {
				return err
			}
			if out != "" && out != "-" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d %s entries to %s\n", entries, persona.DisplayName(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&personaName, "persona", "", "persona to imitate (bettor|fantasy|stats_nerd)")
	cmd.Flags().StringVar(&platformName, "platform", string(model.PlatformDraftKings), "export layout (draftkings|fanduel)")
	cmd.Flags().IntVar(&entries, "entries", 100, "number of entries to write")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&end, "end", "", "timestamp of the latest entry (RFC3339 or YYYY-MM-DD, default now)")
	_ = cmd.MarkFlagRequired("persona")
	return cmd
}

// parseInstant reads RFC3339 or a bare date; empty means fallback.
func parseInstant(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q as RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
