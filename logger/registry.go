package logger

import (
	"sync"
)

// named holds component loggers handed out by Get. Guarded by namedMu.
var (
	namedMu sync.RWMutex
	named   = make(map[string]*Logger)
)

// Register stores a named logger. Later Get calls for the same name return
// it instead of deriving one from the global logger.
func Register(name string, l *Logger) {
	namedMu.Lock()
	named[name] = l
	namedMu.Unlock()
}

// Get retrieves a named logger. Unregistered names fall back to the global
// logger tagged with the requested component name.
func Get(name string) *Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults seeds the registry with component loggers derived from
// the global logger. Call after Init.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}
