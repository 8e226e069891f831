// Package logger provides structured logging based on Zap.
//
// It builds a configured logger instance for either development or production
// style output and integrates with the Fiber web framework.
//
// # Request Correlation
//
// The WithRayID helper extracts the ray ID (request ID) from a Fiber context
// and attaches it to the log entry, so every log line belonging to one
// request can be correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
