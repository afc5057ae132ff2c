// Package logging provides structured logging for lanscan.
//
// This package wraps a zap logger with convenience functions. Logging is
// silent by default so that the terminal UI owns the screen; set
// LANSCAN_LOG_LEVEL (or pass --log-level) to "debug", "info", "warn" or
// "error" to enable it. Log output goes to stderr.
//
// # Log Levels
//
//   - Debug: Datagram hex dumps, foreign traffic, duplicate announcements
//   - Info: Socket binds, discovered peers, scan start and completion
//   - Warn: Non-fatal issues (IPv6 unavailable, close failures)
//   - Error: Fatal scan failures
//
// # Specialized Logging
//
//	logging.LogSocket("udp4", "0.0.0.0:17500", "bound")
//	logging.LogDatagram("192.168.1.10:17500", payload)
//	logging.LogPeer(id, addr, host, namespaces)
//
// # Configuration
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
