package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatPretty = "pretty"
	BooleanTrue  = "true"
)

// Logger is a zerolog logger bound to a service name. Loggers are
// immutable; the With methods return derived copies.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// Init builds the global logger from cfg after applying its defaults.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	globalLogger = New(cfg, "default")
	if isConsole(cfg.Format) {
		log.Logger = consoleLogger(cfg, "default", outputWriter(cfg.Output))
	}
}

// New creates a logger writing to the configured output.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w. An unknown level falls back
// to info.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(w)
	if isConsole(cfg.Format) {
		zl = consoleLogger(cfg, serviceName, w)
	}
	zc := zl.Level(level).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewDefault creates an info-level console logger on stdout.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

// NewFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_NO_COLOR and
// LOG_TIMESTAMP.
func NewFromEnv(serviceName string) *Logger {
	cfg := &Config{
		Level:     envOr("LOG_LEVEL", "info"),
		Format:    envOr("LOG_FORMAT", "console"),
		Output:    envOr("LOG_OUTPUT", "stdout"),
		NoColor:   envOr("LOG_NO_COLOR", "false") == BooleanTrue,
		Timestamp: envOr("LOG_TIMESTAMP", "true") == BooleanTrue,
	}
	return New(cfg, serviceName)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop(), service: "nop"}
}

type contextKey string

// ContextWithRequestID stores a request id that WithContext picks up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldRequestID), id)
}

// ContextWithScopeID stores the id of the active container scope.
func ContextWithScopeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldScopeID), id)
}

func (l *Logger) derive(with func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{logger: with(l.logger.With()).Logger(), service: l.service}
}

// WithContext adds the request and scope ids carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l.derive(func(zc zerolog.Context) zerolog.Context {
		for _, key := range []string{FieldRequestID, FieldScopeID} {
			if v := ctx.Value(contextKey(key)); v != nil {
				zc = zc.Str(key, fmt.Sprint(v))
			}
		}
		return zc
	})
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(func(zc zerolog.Context) zerolog.Context {
		return zc.Str(FieldComponent, name)
	})
}

// WithBean tags lines with a bean id and its scope.
func (l *Logger) WithBean(id, scope string) *Logger {
	return l.derive(func(zc zerolog.Context) zerolog.Context {
		return zc.Str(FieldBean, id).Str(FieldScope, scope)
	})
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(func(zc zerolog.Context) zerolog.Context {
		return zc.Fields(fields)
	})
}

func (l *Logger) WithError(err error) *Logger {
	return l.derive(func(zc zerolog.Context) zerolog.Context {
		return zc.Err(err)
	})
}

// Level reports the minimum level this logger writes.
func (l *Logger) Level() zerolog.Level {
	return l.logger.GetLevel()
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		event = event.Fields(fm)
	}
	event.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	l.emit(l.logger.Fatal(), msg, fields)
}

var globalLogger *Logger

func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one on
// first use.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

func WithContext(ctx context.Context) *Logger { return GetGlobalLogger().WithContext(ctx) }
func WithComponent(name string) *Logger       { return GetGlobalLogger().WithComponent(name) }

func isConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console", FormatPretty:
		return true
	}
	return false
}

func outputWriter(output string) *os.File {
	if strings.EqualFold(output, "stderr") {
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

const colorReset = "\033[0m"

// levelStyles maps zerolog level names to a console tag and color.
var levelStyles = map[string][2]string{
	"debug": {"DBG", "\033[36m"},
	"info":  {"INF", "\033[32m"},
	"warn":  {"WRN", "\033[33m"},
	"error": {"ERR", "\033[31m"},
	"fatal": {"FTL", "\033[35m"},
}

func consoleLogger(cfg *Config, serviceName string, w io.Writer) zerolog.Logger {
	paint := func(color, s string) string {
		if cfg.NoColor {
			return s
		}
		return color + s + colorReset
	}
	prefix := ""
	if serviceName != "" && serviceName != "default" {
		prefix = paint("\033[34m", "["+serviceName+"]")
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			name := fmt.Sprint(i)
			style, ok := levelStyles[name]
			if !ok {
				return prefix + "[" + strings.ToUpper(name) + "]"
			}
			return prefix + paint(style[1], "["+style[0]+"]")
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprint(i) + ":"
		},
	}).With().Timestamp().Logger()
}
