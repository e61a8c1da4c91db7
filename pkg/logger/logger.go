package logger

import (
	"context"
	"os"
	"path/filepath"

	"github.com/eatsapp/order-service/internal/config"
	sqldblogger "github.com/simukti/sqldb-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the application-wide structured logger. It also satisfies
// the sqldblogger.Logger interface so the same instance can be plugged
// into the database driver wrapper.
type Logger interface {
	// With returns a logger based off the root logger and decorates
	// it with the given context and arguments.
	With(ctx context.Context, args ...interface{}) Logger

	Debug(args ...interface{})
	Info(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Log lets the SQL driver wrapper report executed queries.
	Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{})

	// Sync flushes any buffered log entries.
	Sync() error
}

type logger struct {
	*zap.SugaredLogger
}

// New creates a logger configured by cfg. Entries go to stdout and,
// when a log path is configured, to a size-rotated file as well.
func New(cfg *config.Config) Logger {
	level := zap.InfoLevel
	if err := level.Set(cfg.Logger.Level); err != nil {
		level = zap.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.Logger.Path != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Logger.Path, "server.log"),
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	return NewWithZap(zap.New(core, zap.AddCaller()))
}

// NewWithZap creates a new logger using the preconfigured zap logger.
func NewWithZap(l *zap.Logger) Logger {
	return &logger{l.Sugar()}
}

func (l *logger) With(_ context.Context, args ...interface{}) Logger {
	if len(args) > 0 {
		return &logger{l.SugaredLogger.With(args...)}
	}
	return l
}

// Log implements the sqldblogger.Logger interface.
func (l *logger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	args := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		args = append(args, k, v)
	}

	switch level {
	case sqldblogger.LevelError:
		l.Errorw(msg, args...)
	case sqldblogger.LevelInfo:
		l.Infow(msg, args...)
	default:
		l.Debugw(msg, args...)
	}
}
