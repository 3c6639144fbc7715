// Package logger provides structured logging for lookahead using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Background producers use
// it to report why they stopped, tagged with the stream they belong to.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pump")
//	log.Error("source failed", logger.Fields(logger.FieldTag, "reader-1"))
package logger
