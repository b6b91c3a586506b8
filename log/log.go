package log

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	// stdout is reserved for command output such as `ogp list`.
	stderr, closer, err := zap.Open("stderr")
	if err != nil {
		closer()
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	if os.Getenv("DEBUG") != "" {
		level.SetLevel(zapcore.DebugLevel)
	}

	logger = New(stderr)
}

// New returns a console logger writing to ws at the shared level.
func New(ws zapcore.WriteSyncer) *zap.Logger {
	encConfig := zap.NewDevelopmentEncoderConfig()
	encConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encConfig.EncodeCaller = nil
	encConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.StampMicro))
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encConfig), ws, level)
	return zap.New(core, zap.ErrorOutput(ws))
}

// SetDebug switches the shared logger between debug and info level.
func SetDebug(debug bool) {
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// S returns a *[zap.SugaredLogger].
func S() *zap.SugaredLogger {
	return logger.Sugar()
}

// L returns a *[zap.Logger].
func L() *zap.Logger {
	return logger
}
