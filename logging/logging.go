/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suparena/entitybind/config"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures the logger.
type Options struct {
	Level  string `env:"ENTITYBIND_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ENTITYBIND_LOG_FORMAT" envDefault:"json"`
}

// LoadOptions reads Options from the environment.
func LoadOptions() (Options, error) {
	config.LoadDotEnv()
	var opts Options
	if err := config.Load(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// New builds a logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	return NewWithWriter(opts, os.Stderr)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(opts Options, w io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	case FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	default:
		return nil, fmt.Errorf("invalid log format %q: want %s or %s", opts.Format, FormatJSON, FormatConsole)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
