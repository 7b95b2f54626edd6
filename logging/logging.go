// Package logging builds the slog handler used by the liquidloc CLI.
package logging

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Colors reports whether w is a terminal that accepts ANSI colors.
func Colors(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

// Handler returns a tint handler writing to out. debug lowers the level to
// Debug and adds source locations.
func Handler(debug bool, out io.Writer) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return tint.NewHandler(out, &tint.Options{
		AddSource: debug,
		Level:     level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if _, ok := attr.Value.Any().(error); attr.Key == "err" || ok {
				return tint.Attr(9, attr)
			}
			return attr
		},
		TimeFormat: "15:04:05",
		NoColor:    !Colors(out),
	})
}

// New returns a logger backed by Handler.
func New(debug bool, out io.Writer) *slog.Logger {
	return slog.New(Handler(debug, out))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(tint.NewHandler(io.Discard, &tint.Options{Level: slog.Level(math.MaxInt)}))
}
