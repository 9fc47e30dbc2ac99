package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"wms-console/internal/config"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var (
	Logger    *log.Logger
	logLevel  LogLevel = INFO
	logFormat          = "text"
	logFile   *os.File
	mu        sync.RWMutex
)

// ParseLevel 解析日志级别字符串
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("invalid log level: %s", s)
}

// Setup 初始化日志系统
func Setup(cfg config.LogConfig) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	var writer io.Writer
	var file *os.File
	switch strings.ToLower(cfg.Output) {
	case "console":
		writer = os.Stdout
	case "file":
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return err
		}
		writer = file
	case "both":
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return err
		}
		writer = io.MultiWriter(os.Stdout, file)
	default:
		return fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	logLevel = level
	logFormat = format
	Logger = log.New(writer, "", 0)
	mu.Unlock()

	Info("Logger initialized successfully")
	return nil
}

// SetOutput 替换输出目标，测试时使用
func SetOutput(w io.Writer, level LogLevel, format string) {
	mu.Lock()
	defer mu.Unlock()
	Logger = log.New(w, "", 0)
	logLevel = level
	logFormat = format
}

// Close 关闭日志文件
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	return file, nil
}

func formatMessage(level LogLevel, msg string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if logFormat == "json" {
		line, err := json.Marshal(struct {
			Time  string `json:"time"`
			Level string `json:"level"`
			Msg   string `json:"msg"`
		}{timestamp, levelNames[level], msg})
		if err == nil {
			return string(line)
		}
	}
	return fmt.Sprintf("[%s] %s: %s", timestamp, levelNames[level], msg)
}

// GetLogger 获取日志实例
func GetLogger() *log.Logger {
	mu.RLock()
	l := Logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if Logger == nil {
		Logger = log.New(os.Stdout, "", 0)
	}
	return Logger
}

func output(level LogLevel, msg string) {
	mu.RLock()
	enabled := level >= logLevel
	mu.RUnlock()
	if !enabled {
		return
	}
	GetLogger().Print(formatMessage(level, msg))
}

func Debug(args ...interface{}) { output(DEBUG, fmt.Sprint(args...)) }

func Debugf(format string, args ...interface{}) { output(DEBUG, fmt.Sprintf(format, args...)) }

func Info(args ...interface{}) { output(INFO, fmt.Sprint(args...)) }

func Infof(format string, args ...interface{}) { output(INFO, fmt.Sprintf(format, args...)) }

func Warn(args ...interface{}) { output(WARN, fmt.Sprint(args...)) }

func Warnf(format string, args ...interface{}) { output(WARN, fmt.Sprintf(format, args...)) }

func Error(args ...interface{}) { output(ERROR, fmt.Sprint(args...)) }

func Errorf(format string, args ...interface{}) { output(ERROR, fmt.Sprintf(format, args...)) }

func Fatal(args ...interface{}) {
	output(FATAL, fmt.Sprint(args...))
	os.Exit(1)
}

func Fatalf(format string, args ...interface{}) {
	output(FATAL, fmt.Sprintf(format, args...))
	os.Exit(1)
}
