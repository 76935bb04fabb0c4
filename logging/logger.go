// Package logging wires a single structured logger for the whole
// process, the same shape as the shared *logrus.Logger the retrieved
// matching-engine reference wires through pkg/utils.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process-wide logger: JSON output to stdout so it can
// be shipped straight into a log aggregator, info level by default.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}
