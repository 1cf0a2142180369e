package application

import "log/slog"

// ResolveLogger falls back to the process default so use cases built as zero
// values in tests still log.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
