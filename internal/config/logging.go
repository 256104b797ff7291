package config

import (
	"fmt"
	"strings"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	Format     string          `yaml:"format" json:"format,omitempty"`         // json, console
	File       string          `yaml:"file" json:"file,omitempty"`             // extra output path besides stderr
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Categories not listed are enabled.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Validate checks the level and format.
func (c *LoggingConfig) Validate() error {
	level := strings.ToLower(c.Level)
	valid := false
	for _, l := range ValidLogLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Level, ValidLogLevels)
	}
	switch strings.ToLower(c.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: json, console)", c.Format)
	}
	return nil
}
