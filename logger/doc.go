// Package logger provides structured logging backed by zerolog.
//
// Components receive a *Logger and derive component-scoped children with
// WithComponent. A process-wide logger is available through the package-level
// helpers for code that has no logger injected.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "mboxctl").WithComponent("session")
//	log.Debug("session renewed", logger.Fields(logger.FieldSessionID, id))
package logger
