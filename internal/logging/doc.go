// Package logging provides structured logging for tlstalk.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the tool. It provides both general logging
// functions and specialized functions for session and wire-level logging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw byte dumps, framing decisions)
//   - Info: Normal operations (connections, handshakes, messages, shutdown)
//   - Warn: Non-fatal issues (shutdown errors, framing fallbacks)
//   - Error: Fatal issues (startup failures, stream errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Session established",
//	    zap.String("remote_addr", "127.0.0.1:52114"),
//	    zap.String("session_id", sess.ID()),
//	)
//
// # Specialized Logging
//
// Connection logging:
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogConnection(remoteAddr, "session_closed")
//
// TLS handshake logging:
//
//	logging.LogTLSHandshake(remoteAddr, state.Version, state.CipherSuite, state.ServerName)
//
// Framed message logging:
//
//	logging.LogMessage(remoteAddr, "received", msg.Raw)
//	logging.LogMessage(remoteAddr, "sent", payload)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the TLSTALK_LOG_LEVEL environment variable is
// consulted; if that is also unset, logging is silent so the operator
// conversation on stdout stays clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
