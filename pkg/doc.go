// Package pkg provides shared utilities for the ANT protocol stack.
//
// This package contains common functionality used across the driver,
// transport, node, channel, and ANT-FS layers, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types and response-code error types for ANT/ANT-FS
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with ANT-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentChannel, "channel opened", "channel", 0)
//
// # Errors
//
// Common ANT errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrTransferFailed) {
//	    // Handle acknowledged/burst send failure
//	}
package pkg
