package stout

import "github.com/sirupsen/logrus"

// defaultLogger is used by any component constructed without an explicit
// logger. Components hold their own *logrus.Logger field (mirroring the
// teacher's Worker.logger), so a caller wiring up a server or emitter in a
// larger program can swap in its own configured logger.
var defaultLogger = logrus.StandardLogger()

// DefaultLogger returns the package-wide fallback logger.
func DefaultLogger() *logrus.Logger { return defaultLogger }

// SetDefaultLogger overrides the package-wide fallback logger. It is
// intended for process-wide setup, once, before any component is
// constructed without an explicit logger — the same "write once at setup"
// lifecycle the emitter configuration itself follows (§5).
func SetDefaultLogger(l *logrus.Logger) { defaultLogger = l }
