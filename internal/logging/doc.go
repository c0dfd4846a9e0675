// Package logging provides structured logging utilities for chatcal.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler construction from configuration (text or JSON, runtime level)
//   - PII sanitization (chat user ids are hashed)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithCommand(slog.Default(), "schedule")
//	logger.Info("command handled",
//	    logging.UserHash(msg.UserID),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
//   - Chat user ids are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly, only SanitizeToken output
package logging
