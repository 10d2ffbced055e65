package logging

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

/*
Config 描述日志的输出行为。

	FileLevel 写入日志文件的最低级别；
	ConsoleLevel 输出到控制台的最低级别；
	FileDir 日志文件所在目录，为空时不写文件；
	DisableConsole 为 true 时不输出到控制台。
*/
type Config struct {
	FileLevel      logrus.Level
	ConsoleLevel   logrus.Level
	FileDir        string
	DisableConsole bool
}

var (
	globalConfig = Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   logrus.InfoLevel,
		FileDir:        "",
		DisableConsole: false,
	}

	defaultLogger     *logrus.Logger
	defaultLoggerOnce sync.Once
)

func SetDefaultConfig(config *Config) {
	globalConfig = *config
}

func GenerateTestConfig(t *testing.T) *Config {
	return &Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   logrus.DebugLevel,
		FileDir:        t.TempDir(),
		DisableConsole: false,
	}
}

type consoleHook struct {
	level logrus.Level
}

func (h *consoleHook) Levels() []logrus.Level {
	return logrus.AllLevels[:h.level+1]
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(os.Stderr, line)
	return err
}

func newLogger(config *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(io.Discard)

	if len(config.FileDir) != 0 {
		fileName := fmt.Sprintf("bacref_%s.log", time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(
			filepath.Join(config.FileDir, fileName),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err == nil {
			logger.SetOutput(file)
			logger.SetLevel(config.FileLevel)
		} else {
			fmt.Fprintf(os.Stderr, "open log file fail: %v\n", err)
		}
	}

	if !config.DisableConsole {
		logger.AddHook(&consoleHook{level: config.ConsoleLevel})
	}

	return logger
}

// NewLogger 按照全局配置构建一个新的 logger。
func NewLogger() *logrus.Logger {
	return newLogger(&globalConfig)
}

// Default 返回全局共享的 logger。
func Default() *logrus.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger()
	})
	return defaultLogger
}
