// Package logging provides the leveled, printf-style logging API used across
// art-vault, backed by a zap SugaredLogger.
//
// Levels: DEBUG, INFO, WARN, ERROR and FATAL (which exits the process).
//
// The level comes from DEBUG (any truthy value forces debug) and then
// LOG_LEVEL. LOG_FORMAT=json switches to structured JSON output.
package logging
