package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

var (
	// 全局日志实例
	globalLogger *zap.Logger
	// 全局开关
	LogEnabled = true
	// Debug模式开关
	DebugEnabled = true
	// 数据库错误日志写入器
	dbWriter *DBErrorWriter
	// 初始化锁
	once sync.Once
)

// LogLevel 日志级别
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
	FATAL LogLevel = "FATAL"
)

// Config 日志配置
type Config struct {
	Level         LogLevel `json:"level"`
	EnableConsole bool     `json:"enable_console"`
	EnableFile    bool     `json:"enable_file"`
	FilePath      string   `json:"file_path"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Level:         DEBUG,
		EnableConsole: true,
		EnableFile:    false,
		FilePath:      "./logs/walletgate.log",
	}
}

// ErrorLog 错误日志数据库模型
type ErrorLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
	Caller    string    `gorm:"size:255;not null" json:"caller"`
	Function  string    `gorm:"size:255;not null" json:"function"`
	Message   string    `gorm:"not null" json:"message"`
	Error     string    `gorm:"" json:"error"`
	Context   string    `gorm:"type:text" json:"context"`
}

// TableName 设置表名
func (ErrorLog) TableName() string {
	return "error_logs"
}

// DBErrorWriter 数据库错误日志写入器
type DBErrorWriter struct {
	db *gorm.DB
}

// NewDBErrorWriter 创建数据库错误日志写入器
func NewDBErrorWriter(db *gorm.DB) *DBErrorWriter {
	return &DBErrorWriter{db: db}
}

// WriteError 写入错误日志到数据库
func (w *DBErrorWriter) WriteError(message string, err error, fields ...interface{}) {
	if w.db == nil {
		return
	}

	_, file, line, _ := runtime.Caller(2)
	caller := fmt.Sprintf("%s:%d", filepath.Base(file), line)
	function := getFunction(1)

	// 额外字段序列化为上下文
	contextMap := make(map[string]interface{})
	for i := 0; i+1 < len(fields); i += 2 {
		contextMap[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	var contextStr string
	if len(contextMap) > 0 {
		contextJSON, _ := json.Marshal(contextMap)
		contextStr = string(contextJSON)
	}

	errorStr := ""
	if err != nil {
		errorStr = err.Error()
	}

	errorLog := &ErrorLog{
		Timestamp: time.Now(),
		Caller:    caller,
		Function:  function,
		Message:   message,
		Error:     errorStr,
		Context:   contextStr,
	}

	// 异步写入数据库，避免阻塞主流程
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := w.db.WithContext(ctx).Create(errorLog).Error; err != nil {
			// 数据库写入失败时只打印到控制台，不递归调用Error
			fmt.Printf("Failed to write error log to database: %v\n", err)
		}
	}()
}

// Init 初始化日志系统
func Init(config *Config) {
	once.Do(func() {
		globalLogger = buildLogger(config)
	})
}

// SetDB 设置数据库连接，用于错误日志写入
func SetDB(db *gorm.DB) {
	if db != nil {
		dbWriter = NewDBErrorWriter(db)
	}
}

// buildLogger 根据配置构建zap logger
func buildLogger(config *Config) *zap.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var level zapcore.Level
	switch config.Level {
	case DEBUG:
		level = zapcore.DebugLevel
	case INFO:
		level = zapcore.InfoLevel
	case WARN:
		level = zapcore.WarnLevel
	case ERROR:
		level = zapcore.ErrorLevel
	case FATAL:
		level = zapcore.FatalLevel
	default:
		level = zapcore.InfoLevel
	}

	var cores []zapcore.Core

	// 控制台输出
	if config.EnableConsole {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	// 文件输出
	if config.EnableFile {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
		} else {
			file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
			} else {
				// 文件输出使用无颜色的JSON编码器
				fileEncoderConfig := encoderConfig
				fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
				cores = append(cores, zapcore.NewCore(
					zapcore.NewJSONEncoder(fileEncoderConfig),
					zapcore.AddSync(file),
					level,
				))
			}
		}
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

// getCaller 获取调用者信息
func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// getFunction 获取调用函数名
func getFunction(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 2)
	if !ok {
		return "unknown"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}

	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	return name
}

// 确保logger已初始化
func ensureLogger() {
	if globalLogger == nil {
		Init(DefaultConfig())
	}
}

// buildFields 构建zap字段
func buildFields(extra []zap.Field, fields ...interface{}) []zap.Field {
	zapFields := []zap.Field{
		zap.String("caller", getCaller(1)),
		zap.String("function", getFunction(1)),
	}
	zapFields = append(zapFields, extra...)

	for i := 0; i+1 < len(fields); i += 2 {
		zapFields = append(zapFields, zap.Any(fmt.Sprintf("%v", fields[i]), fields[i+1]))
	}
	return zapFields
}

// Debug 调试日志
func Debug(msg string, fields ...interface{}) {
	if !LogEnabled || !DebugEnabled {
		return
	}
	ensureLogger()
	globalLogger.Debug(msg, buildFields(nil, fields...)...)
}

// Info 信息日志
func Info(msg string, fields ...interface{}) {
	if !LogEnabled {
		return
	}
	ensureLogger()
	globalLogger.Info(msg, buildFields(nil, fields...)...)
}

// Warn 警告日志
func Warn(msg string, fields ...interface{}) {
	if !LogEnabled {
		return
	}
	ensureLogger()
	globalLogger.Warn(msg, buildFields(nil, fields...)...)
}

// Error 错误日志
func Error(msg string, err error, fields ...interface{}) {
	if !LogEnabled {
		return
	}
	ensureLogger()

	var extra []zap.Field
	if err != nil {
		extra = append(extra, zap.Error(err))
	}
	globalLogger.Error(msg, buildFields(extra, fields...)...)

	// 写入数据库（异步）
	if dbWriter != nil {
		dbWriter.WriteError(msg, err, fields...)
	}
}

// Fatal 致命错误日志
func Fatal(msg string, err error, fields ...interface{}) {
	if !LogEnabled {
		return
	}
	ensureLogger()

	extra := []zap.Field{zap.Stack("stack")}
	if err != nil {
		extra = append(extra, zap.Error(err))
	}

	if dbWriter != nil {
		dbWriter.WriteError(msg, err, fields...)
	}

	globalLogger.Fatal(msg, buildFields(extra, fields...)...)
}

// Sync 刷新日志缓冲区
func Sync() {
	if globalLogger != nil {
		globalLogger.Sync()
	}
}
