// Package log provides the leveled logging interface shared by langlab packages.
//
// Library code logs through the package-level helpers (Debug, Info, Warn,
// Error). The default logger writes to stderr at info level with a
// "[langlab] " prefix; the CLI swaps it for a golog backed logger:
//
//	glogger := golog.New()
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//	log.SetDefaultLogger(logger)
//
// Levels, from most to least verbose, are LogLevelDebug, LogLevelInfo,
// LogLevelWarn, LogLevelError and LogLevelNone. ParseLevel converts the
// textual form used by flags and environment variables.
package log
