package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/asset-hub/asset-hub/internal/config"
)

const logDirPerm = 0o755

// InitLogger 按全局配置构建 JSON 结构化日志器。日志文件不可写时退回
// stdout 并继续启动，只在输出流里留一条降级记录。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	logger.SetOutput(os.Stdout)

	var fileErr error
	if cfg.LogFilePath != "" {
		rotator, openErr := openRotatingFile(cfg)
		if openErr != nil {
			fileErr = openErr
			fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", openErr)
		} else {
			logger.SetOutput(rotator)
		}
	}

	// 包级 logrus 跟随实例配置，依赖库的全局日志写入同一条流。
	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	if fileErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFilePath,
		}).Warn(fileErr.Error())
	}

	return logger, nil
}

// openRotatingFile 建立 lumberjack 轮转输出，日志目录不存在时先创建。
func openRotatingFile(cfg config.GlobalConfig) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), logDirPerm); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}
