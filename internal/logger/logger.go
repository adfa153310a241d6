package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultFilename   = "leafcart.log"
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 10
	defaultMaxAgeDays = 14
)

// Options 日志配置
type Options struct {
	Level      string // debug / info / warn / error，为空时由运行模式决定
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Stdout     bool // release 模式下是否同时输出到标准输出
}

// L 全局日志实例
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallback     *zap.Logger
)

// Init 初始化全局日志并替换 zap 全局实例
func Init(mode string, opts Options) *zap.Logger {
	L = New(mode, opts)
	zap.ReplaceGlobals(L)
	return L
}

// New 按运行模式创建日志实例
// debug 模式输出彩色控制台日志，其余模式写入滚动文件（JSON）。
func New(mode string, opts Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(opts.Level, debug)
	encCfg := encoderConfig()

	if debug {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level)
		return build(core)
	}

	jsonEncoder := zapcore.NewJSONEncoder(encCfg)
	fileSyncer, err := rotatingFile(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: file output unavailable, using stdout: %v\n", err)
		return build(zapcore.NewCore(jsonEncoder, zapcore.AddSync(os.Stdout), level))
	}

	core := zapcore.NewCore(jsonEncoder, fileSyncer, level)
	if opts.Stdout {
		core = zapcore.NewTee(core, zapcore.NewCore(jsonEncoder, zapcore.AddSync(os.Stdout), level))
	}
	return build(core)
}

// StdLogger 返回桥接到 zap 的标准库 logger
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Z 返回当前可用的日志实例
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	fallbackOnce.Do(func() {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), zap.InfoLevel)
		fallback = build(core)
	})
	return fallback
}

// S 返回 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 返回附带字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }

func Infow(msg string, kv ...interface{}) { S().Infow(msg, kv...) }

func Warnw(msg string, kv ...interface{}) { S().Warnw(msg, kv...) }

func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

// Sync 刷新缓冲
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

func build(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func resolveLevel(raw string, debug bool) zap.AtomicLevel {
	if strings.TrimSpace(raw) != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(raw)))); err == nil {
			return zap.NewAtomicLevelAt(lvl)
		}
	}
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

func rotatingFile(opts Options) (zapcore.WriteSyncer, error) {
	path, err := logFilePath(opts)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: positiveOr(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     positiveOr(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   opts.Compress,
	}), nil
}

func logFilePath(opts Options) (string, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaultDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(opts.Filename)
	if name == "" {
		name = defaultFilename
	}
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close log file: %w", err)
	}
	return path, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
