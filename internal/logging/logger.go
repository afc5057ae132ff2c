package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar names the environment variable consulted when no level is
// passed on the command line. Unset or empty means silent.
const LogLevelEnvVar = "LANSCAN_LOG_LEVEL"

// dumpLimit caps how much of a datagram is dumped into a log entry
const dumpLimit = 256

// Initialize installs the package logger at the given level ("debug",
// "info", "warn", "error"; case-insensitive). An empty level falls back to
// LANSCAN_LOG_LEVEL, and when that is empty too the logger discards
// everything. Entries go to stderr so they never mix with result output.
func Initialize(level string) error {
	if level == "" {
		level = strings.TrimSpace(os.Getenv(LogLevelEnvVar))
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(lvl),
	)
	logger = zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))).
		Named("lanscan")
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		// This ensures no unexpected log output in CLI commands
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// SetLogger replaces the global logger, e.g. with a test observer
func SetLogger(l *zap.Logger) {
	logger = l
}

// LogSocket logs a socket lifecycle event
func LogSocket(network, addr, event string) {
	Info("Socket event",
		zap.String("network", network),
		zap.String("addr", addr),
		zap.String("event", event),
	)
}

// LogDatagram logs a received datagram with hex and ASCII dumps.
// The dumps are only built when debug logging is enabled.
func LogDatagram(from string, data []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	Debug("Datagram received",
		zap.String("from", from),
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

// LogPeer logs the first sighting of a peer
func LogPeer(id, addr, host string, namespaces int) {
	Info("Peer discovered",
		zap.String("id", id),
		zap.String("addr", addr),
		zap.String("host", host),
		zap.Int("namespaces", namespaces),
	)
}

func truncate(data []byte) ([]byte, string) {
	if len(data) > dumpLimit {
		return data[:dumpLimit], "..."
	}
	return data, ""
}

func hexDump(data []byte) string {
	head, more := truncate(data)
	return hex.EncodeToString(head) + more
}

// asciiDump shows printable bytes as-is and everything else as '.'
func asciiDump(data []byte) string {
	head, more := truncate(data)
	var b strings.Builder
	b.Grow(len(head) + len(more))
	for _, c := range head {
		if c < ' ' || c > '~' {
			c = '.'
		}
		b.WriteByte(c)
	}
	return b.String() + more
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
