package shop

import "keyfront/internal/logger"

// Notifier is the user-visible notification surface, e.g. a toast bar.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(msg string)
	Error(msg string)
}

// logNotifier is the fallback sink when no UI is attached.
type logNotifier struct{}

func (logNotifier) Notify(msg string) {
	logger.L().Info(msg)
}

func (logNotifier) Error(msg string) {
	logger.L().Warn(msg)
}
