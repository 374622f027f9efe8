package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerOutput(t *testing.T) {
	Convey("Given a text logger writing to a buffer", t, func() {
		SetLevel(slog.LevelInfo)
		var buf bytes.Buffer
		l := New(WithOutput(&buf))

		Convey("When logging an info record with fields", func() {
			l.Info(context.Background(), "analysis complete",
				String("platform", "DRAFTKINGS"),
				Int("entries", 5),
				Bool("hybrid", true),
				Duration("took", 15*time.Millisecond))

			Convey("Then the fields and caller are rendered", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "analysis complete")
				So(out, ShouldContainSubstring, "platform=DRAFTKINGS")
				So(out, ShouldContainSubstring, "entries=5")
				So(out, ShouldContainSubstring, "hybrid=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the level", func() {
			l.Debug(context.Background(), "hidden")
			So(buf.String(), ShouldBeEmpty)
		})

		Convey("When the level is lowered", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			l.Debug(context.Background(), "visible")
			So(buf.String(), ShouldContainSubstring, "visible")
			SetLevel(slog.LevelInfo)
		})
	})

	Convey("Given a JSON logger", t, func() {
		SetLevel(slog.LevelInfo)
		var buf bytes.Buffer
		l := New(WithOutput(&buf), WithFormat(FormatJSON)).Named("ingest").With(String("job", "j-1"))
		l.Warn(context.Background(), "row skipped", Error(errors.New("bad fee")))

		Convey("Then the record decodes with grouped fields", func() {
			var rec map[string]interface{}
			So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec), ShouldBeNil)
			So(rec["level"], ShouldEqual, "WARN")
			So(rec["msg"], ShouldEqual, "row skipped")
			group, ok := rec["ingest"].(map[string]interface{})
			So(ok, ShouldBeTrue)
			So(group["error"], ShouldEqual, "bad fee")
		})
	})
}

func TestGlobalLogger(t *testing.T) {
	Convey("Given the package level logger", t, func() {
		So(Get(), ShouldNotBeNil)
		So(Init(WithOutput(&bytes.Buffer{})), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Named("service"), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
	})

	Convey("Given level names", t, func() {
		for _, name := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
			So(SetLevelString(name), ShouldBeNil)
		}
		err := SetLevelString("verbose")
		So(errors.Is(err, ErrUnknownLevel), ShouldBeTrue)
		SetLevel(slog.LevelWarn)
		So(Level(), ShouldEqual, slog.LevelWarn)
		SetLevel(slog.LevelInfo)
	})

	Convey("Given the no-op logger", t, func() {
		n := Nop()
		So(func() { n.Info(context.Background(), "x"); n.Named("a").With(Int("b", 1)).Warn(context.Background(), "y") }, ShouldNotPanic)
	})
}
