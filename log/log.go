package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	NoneLevel  LogLevel = iota
	ErrorLevel LogLevel = iota
	InfoLevel  LogLevel = iota
	TraceLevel LogLevel = iota
)

// Level gates all output. The zap core below is kept wide open and the
// driver does its own level checks so that trace-level hex dumps cost
// nothing when disabled.
var (
	Level = NoneLevel
	base  *zap.SugaredLogger
)

func init() {
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)
	base = zap.New(core).Named("bolt").Sugar()
}

// SetLevel sets the logging level by name: "trace", "info", "error" or
// anything else for none
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		Level = TraceLevel
	case "info":
		Level = InfoLevel
	case "error":
		Level = ErrorLevel
	default:
		Level = NoneLevel
	}
}

// SetLogger swaps the backing zap logger, for callers that already carry
// their own configured instance
func SetLogger(logger *zap.Logger) {
	base = logger.Named("bolt").Sugar()
}

func Trace(args ...interface{}) {
	if Level >= TraceLevel {
		base.Debug(args...)
	}
}

func Tracef(msg string, args ...interface{}) {
	if Level >= TraceLevel {
		base.Debugf(msg, args...)
	}
}

func Info(args ...interface{}) {
	if Level >= InfoLevel {
		base.Info(args...)
	}
}

func Infof(msg string, args ...interface{}) {
	if Level >= InfoLevel {
		base.Infof(msg, args...)
	}
}

func Error(args ...interface{}) {
	if Level >= ErrorLevel {
		base.Error(args...)
	}
}

func Errorf(msg string, args ...interface{}) {
	if Level >= ErrorLevel {
		base.Errorf(msg, args...)
	}
}
