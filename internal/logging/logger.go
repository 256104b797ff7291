// Package logging builds sorokid's zap loggers from config.LoggingConfig and
// hands out per-category children. Disabled categories get a no-op logger.
package logging

import (
	"fmt"
	"strings"

	"sorokid/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryCLI     Category = "cli"     // Command dispatch and output
	CategoryBattery Category = "battery" // Regression battery runs
	CategoryWatch   Category = "watch"   // Battery file watcher
	CategoryDrill   Category = "drill"   // Problem generation
)

// Categories lists every known category.
var Categories = []Category{CategoryCLI, CategoryBattery, CategoryWatch, CategoryDrill}

// Logger is a root zap logger plus the category toggles it was built with.
type Logger struct {
	*zap.Logger
	cfg config.LoggingConfig
}

// New builds a logger writing to stderr (and cfg.File when set). verbose
// forces debug level regardless of cfg.Level.
func New(cfg config.LoggingConfig, verbose bool) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
	}

	z, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{Logger: z, cfg: cfg}, nil
}

// Wrap adopts an existing zap logger with every category enabled. Tests use
// it with zap.NewNop or an observer core.
func Wrap(z *zap.Logger) *Logger {
	return &Logger{Logger: z}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return Wrap(zap.NewNop())
}

// Get returns the named child logger for a category, or a no-op logger when
// the category is disabled.
func (l *Logger) Get(category Category) *zap.Logger {
	if l == nil || l.Logger == nil {
		return zap.NewNop()
	}
	if !l.cfg.IsCategoryEnabled(string(category)) {
		return zap.NewNop()
	}
	return l.Named(string(category))
}

// IsCategoryEnabled reports whether category will produce output.
func (l *Logger) IsCategoryEnabled(category Category) bool {
	return l != nil && l.cfg.IsCategoryEnabled(string(category))
}

// Close flushes buffered entries. Sync errors on terminals are expected and
// ignored.
func (l *Logger) Close() {
	if l != nil && l.Logger != nil {
		_ = l.Sync()
	}
}
