package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Logger is the subset of *slog.Logger the rest of the daemon needs.
// Accepting this interface keeps callers decoupled from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Package state. Loggers are cached per module and carry a LevelVar each,
// so levels can change at runtime without swapping the logger out from
// under its users.
var (
	mutex           sync.RWMutex
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalLevelVar  = &slog.LevelVar{}
	globalConfig    Config
	isInitialized   bool
	logBuffer       *RingBuffer
)

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// Initialize sets up the logging system. Loggers handed out before this
// call are kept and retrofitted: their LevelVars pick up the configured
// levels and their handlers are rebuilt with the full output chain,
// including the ring buffer.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	isInitialized = true
	logBuffer = NewRingBuffer(defaultBufferSize)

	globalLevel := slog.LevelInfo
	if parsed := parseLevel(config.Level); parsed != nil {
		globalLevel = *parsed
	}
	globalLevelVar.Set(globalLevel)

	for module, levelVar := range moduleLevelVars {
		level := globalLevel
		if override, ok := config.Modules[module]; ok {
			if parsed := parseLevel(override); parsed != nil {
				level = *parsed
			}
		}
		levelVar.Set(level)

		handler := createHandler(config.Format, levelVar)
		moduleLoggers[module] = slog.New(handler).With("module", module)
	}

	slog.SetDefault(slog.New(createHandler(config.Format, globalLevelVar)))
}

// SetLevels updates the global and per-module log levels at runtime.
// Empty or unrecognized level strings leave the current level untouched.
// Existing loggers pick up the change immediately through their LevelVars.
func SetLevels(global string, modules map[string]string) {
	mutex.Lock()
	defer mutex.Unlock()

	if parsed := parseLevel(global); parsed != nil {
		globalLevelVar.Set(*parsed)
		globalConfig.Level = global
	}

	for module, levelStr := range modules {
		parsed := parseLevel(levelStr)
		if parsed == nil {
			continue
		}
		if levelVar, exists := moduleLevelVars[module]; exists {
			levelVar.Set(*parsed)
		}
		if globalConfig.Modules == nil {
			globalConfig.Modules = make(map[string]string)
		}
		// Remember the override for loggers created after this call.
		globalConfig.Modules[module] = levelStr
	}
}

// GetBuffer returns the log ring buffer for reading historical logs.
func GetBuffer() *RingBuffer {
	mutex.RLock()
	defer mutex.RUnlock()
	return logBuffer
}

// GetLogger returns the cached logger for a module, creating it on first
// use. Calling before Initialize works; the logger starts at info with a
// plain text handler and is upgraded when Initialize runs.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	// Racing caller may have created it while we upgraded the lock.
	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	level := slog.LevelInfo
	format := "text"
	if isInitialized {
		if parsed := parseLevel(globalConfig.Level); parsed != nil {
			level = *parsed
		}
		if override, ok := globalConfig.Modules[module]; ok {
			if parsed := parseLevel(override); parsed != nil {
				level = *parsed
			}
		}
		format = globalConfig.Format
	}
	levelVar.Set(level)

	logger := slog.New(createHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// createHandler builds the output chain for one logger: stdout (text or
// json), journald when reachable, and always the ring buffer feeding the
// log history endpoint. Level may be a *slog.LevelVar for runtime changes.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdoutHandler slog.Handler
	if format == "json" {
		stdoutHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdoutHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	var handlers []slog.Handler
	if isStdoutAvailable() {
		handlers = append(handlers, stdoutHandler)
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// isStdoutAvailable reports whether stdout goes anywhere useful: a
// terminal, pipe, socket, or regular file. /dev/null shows up as a
// device and fails all four checks.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return (mode&os.ModeCharDevice) != 0 || (mode&os.ModeNamedPipe) != 0 || (mode&os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(level string) *slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil
	}
	return &l
}
