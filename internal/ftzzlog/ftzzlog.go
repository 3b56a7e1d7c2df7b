// Package ftzzlog is a thin wrapper around logrus providing the generator's
// diagnostic logger.
package ftzzlog

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the package-global diagnostic logger. It is safe to use before
// Init is called; it then defaults to warn-level text output on stderr.
var Logger = newDefault()

const levelEnvVar = "FTZZGO_LOG_LEVEL"

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(resolveLevel(os.Getenv(levelEnvVar)))
	return l
}

// Init raises Logger to debug level when verbose is set, overriding the
// environment-derived default; with verbose unset the level is unchanged.
func Init(verbose bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
	}
}

func resolveLevel(raw string) logrus.Level {
	if strings.TrimSpace(raw) == "" {
		return logrus.WarnLevel
	}
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
