// Package logging 初始化全局 slog，并统一命令级别的结构化日志
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Setup 按配置创建 logger 并设为 slog 的默认值
// format: "text" 或 "json"；level: debug/info/warn/error
func Setup(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

// ParseLevel 解析日志级别，空串视为 warn
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// LogOp 记录一次操作的结果：成功 Info，失败 Warn，已取消的 Info
func LogOp(logger *slog.Logger, kind, name string, duration time.Duration, err error) {
	level := slog.LevelInfo
	if err != nil && !errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}

	logger.Log(context.Background(), level, "operation finished",
		slog.String("kind", kind),
		slog.String("name", name),
		slog.Duration("dur", duration),
		slog.String("err", errToString(err)),
	)
}

func errToString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
