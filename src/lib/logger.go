package lib

import (
	"io"
	"os"
	"path"

	"github.com/covalenthq/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"quickstay/src/config"
)

// NewLogger writes JSON lines to a rotating server.log under cfg.LogDir and
// mirrors them to stdout. The returned writer is meant for gin's request log.
func NewLogger(cfg *config.Config) (*zap.Logger, io.Writer, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, err
	}
	rotating := &lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}

	encCfg := zap.NewProductionEncoderConfig()
	level := zap.InfoLevel
	if cfg.IsLocal() {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zap.DebugLevel
	}
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotating), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	)
	logger := zap.New(core, zap.AddCaller())

	return logger, io.MultiWriter(rotating, os.Stdout), nil
}
