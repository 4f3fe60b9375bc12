package debug

import (
	"log/slog"
	"os"
	"regexp"
)

// EnvVar is the environment variable toggling debug output.
const EnvVar = "DEBUG"

var enabledPattern = regexp.MustCompile(`^\*$|async-local`)

// Enabled reports whether debug output was requested through the DEBUG environment variable,
// either with "*" or a value containing "async-local".
func Enabled() bool {
	return enabledPattern.MatchString(os.Getenv(EnvVar))
}

// Logger returns the default logger. Debug records are only written when Enabled is true.
func Logger() *slog.Logger {
	level := slog.LevelInfo
	if Enabled() {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
