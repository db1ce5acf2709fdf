package logger

import "sync"

var (
	defMu     sync.RWMutex
	defLogger Logger = NewSlog(Options{Level: InfoLevel, Console: true})
)

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	defMu.RLock()
	defer defMu.RUnlock()
	return defLogger
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defMu.Lock()
	defLogger = l
	defMu.Unlock()
}

func Debug(msg string, keysAndValues ...any) { GetLogger().Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any)  { GetLogger().Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { GetLogger().Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { GetLogger().Error(msg, keysAndValues...) }
