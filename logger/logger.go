package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatPretty = "pretty"
	BooleanTrue  = "true"
)

// Logger is a thin wrapper over zerolog that carries the owning service
// name and the structured-field conventions from fields.go.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init builds the global logger from config and sets the process-wide
// zerolog level. Call it once, early in main.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	service := cfg.ServiceName
	if service == "" {
		service = "default"
	}
	globalLogger = New(&cfg, service)

	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if isConsoleFormat(cfg.Format) {
		log.Logger = newConsoleLogger(&cfg, service)
	}
}

func isConsoleFormat(format string) bool {
	f := strings.ToLower(format)
	return f == "console" || f == FormatPretty
}

// New builds a logger for the given service. Unknown levels fall back
// to info rather than failing.
func New(cfg *Config, serviceName string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var zl zerolog.Logger
	if isConsoleFormat(cfg.Format) {
		zl = newConsoleLogger(cfg, serviceName)
	} else {
		zl = zerolog.New(sink(cfg.Output))
	}

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{logger: zl, service: serviceName}
}

// NewDefault returns a console logger at info level, suitable for
// tests and tooling that never load a config file.
func NewDefault(serviceName string) *Logger {
	return New(&Config{
		Level:     "info",
		Format:    "console",
		Output:    "stdout",
		Timestamp: true,
	}, serviceName)
}

// NewFromEnv builds a logger from LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT,
// LOG_NO_COLOR and LOG_TIMESTAMP.
func NewFromEnv(serviceName string) *Logger {
	return New(&Config{
		Level:     envOr("LOG_LEVEL", "info"),
		Format:    envOr("LOG_FORMAT", "console"),
		Output:    envOr("LOG_OUTPUT", "stdout"),
		NoColor:   envOr("LOG_NO_COLOR", "false") == BooleanTrue,
		Timestamp: envOr("LOG_TIMESTAMP", "true") == BooleanTrue,
	}, serviceName)
}

// contextKey keeps request-scoped values out of collision with other
// packages' context keys.
type contextKey string

const requestIDKey = contextKey("request_id")

// ContextWithRequestID stores a request ID that WithContext picks up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithContext returns a logger carrying the request ID from ctx, or
// the receiver unchanged when none is present.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	v := ctx.Value(requestIDKey)
	if v == nil {
		return l
	}
	return l.derive(l.logger.With().Str(FieldRequestID, fmt.Sprintf("%v", v)))
}

// WithComponent tags every entry with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.logger.With().Str(FieldComponent, name))
}

// WithFields attaches a fixed set of fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return l.derive(zc)
}

// WithError attaches an error field to every entry.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.logger.With().Err(err))
}

func (l *Logger) derive(zc zerolog.Context) *Logger {
	return &Logger{logger: zc.Logger(), service: l.service}
}

// GetLogger exposes the underlying zerolog.Logger for callers that
// need zerolog's own API.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Debug logs at debug level with optional field maps.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

// Info logs at info level with optional field maps.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

// Warn logs at warn level with optional field maps.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

// Error logs at error level with optional field maps.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Error(), msg, fields)
}

// Fatal logs at fatal level and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Fatal(), msg, fields)
}

var globalLogger *Logger

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the process-wide logger, lazily building a
// default one when Init was never called.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

// Package-level shortcuts that go through the global logger.

func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

func Fatal(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Fatal(msg, fields...)
}

// WithContext derives a request-scoped logger from the global one.
func WithContext(ctx context.Context) *Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithComponent derives a component-tagged logger from the global one.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

func sink(output string) *os.File {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var levelTags = map[string]string{
	"DEBUG": "[DBG]",
	"INFO":  "[INF]",
	"WARN":  "[WRN]",
	"ERROR": "[ERR]",
	"FATAL": "[FTL]",
}

var levelColors = map[string]string{
	"DEBUG": "\033[36m[DBG]\033[0m",
	"INFO":  "\033[32m[INF]\033[0m",
	"WARN":  "\033[33m[WRN]\033[0m",
	"ERROR": "\033[31m[ERR]\033[0m",
	"FATAL": "\033[35m[FTL]\033[0m",
}

// newConsoleLogger renders human-readable output with a short service
// prefix, e.g. [STT][INF].
func newConsoleLogger(cfg *Config, serviceName string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        sink(cfg.Output),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			key := strings.ToUpper(fmt.Sprintf("%s", i))
			tags := levelTags
			if !cfg.NoColor {
				tags = levelColors
			}
			lvl, ok := tags[key]
			if !ok {
				lvl = fmt.Sprintf("[%s]", key)
			}
			if serviceName != "" && serviceName != "default" && len(serviceName) >= 3 {
				tag := strings.ToUpper(serviceName[:3])
				if !cfg.NoColor {
					return fmt.Sprintf("\033[34m[%s]\033[0m%s", tag, lvl)
				}
				return fmt.Sprintf("[%s]%s", tag, lvl)
			}
			return lvl
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%s", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatFieldValue: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%s", i)
		},
	}).With().Timestamp().Logger()
}
