package event

import "log/slog"

// Logger returns the default slog logger tagged with a component name.
func Logger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
