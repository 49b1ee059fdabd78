package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings stores config for Logger
type Settings struct {
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	Ext        string `yaml:"ext"`
	TimeFormat string `yaml:"time-format"`
	// rotation, see lumberjack.Logger
	MaxSize    int `yaml:"max-size"`
	MaxBackups int `yaml:"max-backups"`
	MaxAge     int `yaml:"max-age"`
}

type LogLevel int

// Output levels
const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

const (
	defaultCallerDepth = 2
	defaultTimeFormat  = "2006/01/02 15:04:05"
)

var (
	levelFlags = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	zapLevels  = []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel, zapcore.FatalLevel}
)

func (level LogLevel) String() string {
	if level < DEBUG || level > FATAL {
		return fmt.Sprintf("LEVEL(%d)", int(level))
	}
	return levelFlags[level]
}

// ILogger defines the methods that any logger should implement
type ILogger interface {
	Output(level LogLevel, callerDepth int, msg string)
}

// Logger writes entries through a zap core
type Logger struct {
	core   zapcore.Core
	closer io.Closer
}

var DefaultLogger ILogger = NewStdoutLogger()

func newEncoder(timeFormat string) zapcore.Encoder {
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		CallerKey:        "caller",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeLevel:      encodeLevel,
		EncodeCaller:     encodeCaller,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

// FATAL is written as a plain entry, the process is not terminated
func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	for i, l := range zapLevels {
		if l == level {
			enc.AppendString("[" + levelFlags[i] + "]")
			return
		}
	}
	enc.AppendString("[" + level.CapitalString() + "]")
}

func encodeCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("[%s:%d]", filepath.Base(caller.File), caller.Line))
}

// NewWriterLogger creates a logger which print msg to w
func NewWriterLogger(w io.Writer, timeFormat string) *Logger {
	return &Logger{
		core: zapcore.NewCore(newEncoder(timeFormat), zapcore.AddSync(w), zapcore.DebugLevel),
	}
}

// NewStdoutLogger creates a logger which print msg to stdout
func NewStdoutLogger() *Logger {
	return &Logger{
		core: zapcore.NewCore(newEncoder(""), zapcore.Lock(os.Stdout), zapcore.DebugLevel),
	}
}

// NewFileLogger creates a logger which print msg to stdout and a rotated log file
func NewFileLogger(settings *Settings) (*Logger, error) {
	if settings.Name == "" {
		return nil, errors.New("logger: empty file name")
	}
	if err := os.MkdirAll(settings.Path, 0755); err != nil {
		return nil, errors.Wrapf(err, "logger: create dir %s", settings.Path)
	}
	ext := settings.Ext
	if ext == "" {
		ext = "log"
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(settings.Path, settings.Name+"."+ext),
		MaxSize:    settings.MaxSize,
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAge,
		LocalTime:  true,
	}
	ws := zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stdout), zapcore.AddSync(file))
	return &Logger{
		core:   zapcore.NewCore(newEncoder(settings.TimeFormat), ws, zapcore.DebugLevel),
		closer: file,
	}, nil
}

// Setup initializes DefaultLogger
func Setup(settings *Settings) error {
	logger, err := NewFileLogger(settings)
	if err != nil {
		return err
	}
	DefaultLogger = logger
	return nil
}

// Output sends a msg to logger
func (logger *Logger) Output(level LogLevel, callerDepth int, msg string) {
	if level < DEBUG || level > FATAL {
		level = INFO
	}
	entry := zapcore.Entry{
		Level:   zapLevels[level],
		Time:    time.Now(),
		Message: trimNewline(msg),
		Caller:  zapcore.NewEntryCaller(runtime.Caller(callerDepth)),
	}
	if ce := logger.core.Check(entry, nil); ce != nil {
		ce.Write()
	}
}

// Close flushes buffered entries and closes the log file if any
func (logger *Logger) Close() error {
	// stdout does not support fsync on every platform
	_ = logger.core.Sync()
	if logger.closer != nil {
		return logger.closer.Close()
	}
	return nil
}

// fmt.Sprintln leaves a trailing newline, the encoder adds its own
func trimNewline(msg string) string {
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		return msg[:n-1]
	}
	return msg
}

// Debug logs debug message through DefaultLogger
func Debug(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	DefaultLogger.Output(DEBUG, defaultCallerDepth, msg)
}

// Debugf logs debug message through DefaultLogger
func Debugf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	DefaultLogger.Output(DEBUG, defaultCallerDepth, msg)
}

// Info logs message through DefaultLogger
func Info(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	DefaultLogger.Output(INFO, defaultCallerDepth, msg)
}

// Infof logs message through DefaultLogger
func Infof(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	DefaultLogger.Output(INFO, defaultCallerDepth, msg)
}

// Warn logs warning message through DefaultLogger
func Warn(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	DefaultLogger.Output(WARNING, defaultCallerDepth, msg)
}

// Error logs error message through DefaultLogger
func Error(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	DefaultLogger.Output(ERROR, defaultCallerDepth, msg)
}

// Errorf logs error message through DefaultLogger
func Errorf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	DefaultLogger.Output(ERROR, defaultCallerDepth, msg)
}

// Fatal prints error message, it does not stop the program
func Fatal(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	DefaultLogger.Output(FATAL, defaultCallerDepth, msg)
}
