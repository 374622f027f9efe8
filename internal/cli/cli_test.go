package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dfspersona/internal/adapters/http/api"
	"github.com/okian/dfspersona/internal/adapters/ingest"
	service "github.com/okian/dfspersona/internal/app"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

var endOfSeason = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func generate(p model.Persona, platform model.Platform, entries int, seed uint64) []byte {
	var buf bytes.Buffer
	err := GenerateCSV(&buf, GenerateConfig{Persona: p, Platform: platform, Entries: entries, Seed: seed, End: endOfSeason})
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateCSV(t *testing.T) {
	Convey("Given a generator config", t, func() {
		Convey("When the same seed is used twice", func() {
			a := generate(model.PersonaFantasy, model.PlatformDraftKings, 60, 9)
			b := generate(model.PersonaFantasy, model.PlatformDraftKings, 60, 9)
			c := generate(model.PersonaFantasy, model.PlatformDraftKings, 60, 10)

			Convey("Then the output is reproducible", func() {
				So(bytes.Equal(a, b), ShouldBeTrue)
				So(bytes.Equal(a, c), ShouldBeFalse)
			})
		})

		Convey("When a FanDuel export is written", func() {
			records, err := csv.NewReader(bytes.NewReader(generate(model.PersonaBettor, model.PlatformFanDuel, 25, 1))).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then it has the FanDuel header and one row per entry", func() {
				header, err := ingest.Columns(model.PlatformFanDuel)
				So(err, ShouldBeNil)
				So(records[0], ShouldResemble, header)
				So(records[1:], ShouldHaveLength, 25)
				So(records[1][2], ShouldStartWith, "$")
			})
		})

		Convey("When the config is invalid", func() {
			var buf bytes.Buffer
			err := GenerateCSV(&buf, GenerateConfig{Persona: model.PersonaBettor, Platform: model.PlatformDraftKings})
			So(err, ShouldNotBeNil)

			err = GenerateCSV(&buf, GenerateConfig{Persona: "WHALE", Platform: model.PlatformDraftKings, Entries: 5})
			So(errors.Is(err, model.ErrUnknownPersona), ShouldBeTrue)

			err = GenerateCSV(&buf, GenerateConfig{Persona: model.PersonaBettor, Platform: "YAHOO", Entries: 5})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestGeneratedPersonasAreDetected(t *testing.T) {
	svc := service.New(
		service.WithClock(func() time.Time { return endOfSeason }),
		service.WithLogger(logger.Nop()),
	)

	for _, persona := range []model.Persona{model.PersonaBettor, model.PersonaFantasy, model.PersonaStatsNerd} {
		for _, platform := range []model.Platform{model.PlatformDraftKings, model.PlatformFanDuel} {
			Convey("Given a generated "+string(persona)+" history on "+string(platform), t, func() {
				body := generate(persona, platform, 200, 42)

				Convey("When it is analyzed", func() {
					a, err := svc.Parse(context.Background(), "history.csv", body)
					So(err, ShouldBeNil)

					Convey("Then the persona is detected", func() {
						So(a.Platform, ShouldEqual, platform)
						So(a.EntriesCount, ShouldEqual, 200)
						So(a.Warnings, ShouldBeNil)
						So(a.PersonaScores.Primary(), ShouldEqual, persona)
					})
				})
			})
		}
	}
}

func TestFormatMoney(t *testing.T) {
	Convey("Given amounts", t, func() {
		So(formatMoney(decimal.RequireFromString("0")), ShouldEqual, "$0.00")
		So(formatMoney(decimal.RequireFromString("12.5")), ShouldEqual, "$12.50")
		So(formatMoney(decimal.RequireFromString("1234.56")), ShouldEqual, "$1,234.56")
		So(formatMoney(decimal.RequireFromString("1234567")), ShouldEqual, "$1,234,567.00")
	})
}

func TestCommands(t *testing.T) {
	Convey("Given a scratch directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "bettor.csv")

		Convey("When a bettor history is generated and analyzed", func() {
			_, stderr, err := execute("generate", "--persona", "bettor", "--entries", "120", "--end", "2024-11-01", "--out", path)
			So(err, ShouldBeNil)
			So(stderr, ShouldContainSubstring, "wrote 120 Bettor entries")

			Convey("Then the report names the persona", func() {
				stdout, _, err := execute("analyze", "--now", "2024-11-01", path)
				So(err, ShouldBeNil)
				So(stdout, ShouldContainSubstring, "bettor.csv")
				So(stdout, ShouldContainSubstring, "DraftKings")
				So(stdout, ShouldContainSubstring, "Content weights")
			})

			Convey("Then the JSON output decodes", func() {
				stdout, _, err := execute("analyze", "--json", "--now", "2024-11-01", path)
				So(err, ShouldBeNil)
				var results []fileResult
				So(json.Unmarshal([]byte(stdout), &results), ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].Analysis, ShouldNotBeNil)
				So(results[0].Analysis.PersonaScores.Primary(), ShouldEqual, model.PersonaBettor)
			})

			Convey("Then a failing file is reported alongside the good one", func() {
				bad := filepath.Join(dir, "notes.txt")
				So(os.WriteFile(bad, []byte("hello"), 0o600), ShouldBeNil)

				stdout, _, err := execute("analyze", "--json", "-j", "2", bad, path, filepath.Join(dir, "missing.csv"))
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "2 of 3 files failed")

				var results []fileResult
				So(json.Unmarshal([]byte(stdout), &results), ShouldBeNil)
				So(results, ShouldHaveLength, 3)
				So(results[0].Error, ShouldContainSubstring, "file must be a CSV")
				So(results[1].Analysis, ShouldNotBeNil)
				So(results[2].Error, ShouldNotBeEmpty)
			})
		})

		Convey("When generate writes to stdout", func() {
			stdout, _, err := execute("generate", "--persona", "stats nerd", "--platform", "fanduel", "--entries", "3")
			So(err, ShouldBeNil)
			So(strings.Count(stdout, "\n"), ShouldEqual, 4)
			So(stdout, ShouldStartWith, "Entry Id,")
		})

		Convey("When flags are invalid", func() {
			_, _, err := execute("generate", "--persona", "whale")
			So(errors.Is(err, model.ErrUnknownPersona), ShouldBeTrue)

			_, _, err = execute("generate", "--persona", "bettor", "--end", "yesterday")
			So(err, ShouldNotBeNil)

			_, _, err = execute("analyze")
			So(err, ShouldNotBeNil)

			_, _, err = execute("--color", "rainbow", "version")
			So(err, ShouldNotBeNil)

			_, _, err = execute("version", "--format", "xml")
			So(err, ShouldNotBeNil)
		})

		Convey("When the version is requested as JSON", func() {
			stdout, _, err := execute("version", "--format", "json")
			So(err, ShouldBeNil)
			var info versionInfo
			So(json.Unmarshal([]byte(stdout), &info), ShouldBeNil)
			So(info.Version, ShouldEqual, Version)
			So(info.GoVersion, ShouldStartWith, "go")
		})
	})
}

func TestUpload(t *testing.T) {
	Convey("Given a running server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		svc := service.New(
			service.WithClock(func() time.Time { return endOfSeason }),
			service.WithWorkerCount(1),
			service.WithLogger(logger.Nop()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc, api.WithLogger(logger.Nop())).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		Reset(func() {
			srv.Close()
			svc.Stop()
			cancel()
		})

		dir := t.TempDir()
		path := filepath.Join(dir, "fantasy.csv")
		So(os.WriteFile(path, generate(model.PersonaFantasy, model.PlatformDraftKings, 150, 3), 0o600), ShouldBeNil)

		Convey("When the file is uploaded synchronously", func() {
			stdout, _, err := execute("upload", "--server", srv.URL, "--json", path)
			So(err, ShouldBeNil)

			Convey("Then the stored analysis is printed", func() {
				var a types.Analysis
				So(json.Unmarshal([]byte(stdout), &a), ShouldBeNil)
				So(a.ProfileID, ShouldNotBeNil)
				So(a.EntriesCount, ShouldEqual, 150)
				So(a.PersonaScores.Primary(), ShouldEqual, model.PersonaFantasy)
			})
		})

		Convey("When the file is uploaded asynchronously", func() {
			stdout, _, err := execute("upload", "--server", srv.URL, "--async", "--poll", "10ms", path)
			So(err, ShouldBeNil)

			Convey("Then the job finishes with a profile", func() {
				So(stdout, ShouldStartWith, "job ")
				So(stdout, ShouldContainSubstring, " done, profile ")
			})
		})

		Convey("When the server rejects the upload", func() {
			bad := filepath.Join(dir, "empty.csv")
			So(os.WriteFile(bad, []byte("Entry ID,Contest Name,Entry Fee,Winnings,Sport,Date Entered\n"), 0o600), ShouldBeNil)

			client := NewClient(srv.URL, time.Second, 0)
			_, err := client.Analyze(context.Background(), "empty.csv", []byte("Entry ID,Contest Name,Entry Fee,Winnings,Sport,Date Entered\n"))

			Convey("Then the error body is surfaced", func() {
				var apiErr *apiError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
				So(apiErr.Code, ShouldEqual, "no_entries")

				_, _, err := execute("upload", "--server", srv.URL, "--async", "--poll", "10ms", bad)
				So(errors.Is(err, ErrJobFailed), ShouldBeTrue)
			})
		})
	})
}
