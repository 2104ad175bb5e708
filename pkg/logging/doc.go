// Package logging provides the shared logging facility for campaignd.
//
// It wraps log/slog with a subsystem-scoped API so every component logs
// with a stable context label:
//
//	logging.Info("ToolRegistry", "started server %s", name)
//
// The level filter is configured once at startup via Init. Secret input
// values must never reach this package; the inputs package enforces that
// at the type level.
package logging
