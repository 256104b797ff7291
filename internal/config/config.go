// Package config loads sorokid's YAML configuration: abacus width and place
// names, logging, drill zones and battery settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sorokid/internal/drill"
	"sorokid/internal/soroban"

	"gopkg.in/yaml.v3"
)

// WorkspaceDir is the per-workspace directory holding config and batteries.
const WorkspaceDir = ".sorokid"

// MaxColumns bounds the abacus width; wider values overflow int arithmetic
// on operands the parser accepts.
const MaxColumns = 15

// Config holds all sorokid configuration.
type Config struct {
	Abacus  AbacusConfig  `yaml:"abacus"`
	Logging LoggingConfig `yaml:"logging"`
	Drill   DrillConfig   `yaml:"drill"`
	Battery BatteryConfig `yaml:"battery"`
}

// AbacusConfig sizes the frame and names its columns.
type AbacusConfig struct {
	Columns int `yaml:"columns"`
	// PlaceNames is indexed by place value, units first. Places past the end
	// render as 10^k.
	PlaceNames []string `yaml:"place_names,omitempty"`
}

// DrillConfig configures the problem generator.
type DrillConfig struct {
	Seed   uint64                `yaml:"seed"` // 0 seeds from the clock
	Digits int                   `yaml:"digits"`
	Zones  map[string]drill.Zone `yaml:"zones,omitempty"`
}

// BatteryConfig configures regression battery runs.
type BatteryConfig struct {
	Path     string `yaml:"path,omitempty"`
	Workers  int    `yaml:"workers"` // 0 means one per CPU
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Abacus: AbacusConfig{
			Columns: soroban.DefaultColumns,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Drill: DrillConfig{
			Digits: 1,
		},
		Battery: BatteryConfig{
			Debounce: "200ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. Values that do
// not parse are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SOROKID_COLUMNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Abacus.Columns = n
		}
	}
	if v := os.Getenv("SOROKID_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SOROKID_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SOROKID_BATTERY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Battery.Workers = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Abacus.Columns < 1 || c.Abacus.Columns > MaxColumns {
		return fmt.Errorf("abacus.columns must be in [1,%d], got %d", MaxColumns, c.Abacus.Columns)
	}
	for i, name := range c.Abacus.PlaceNames {
		if name == "" {
			return fmt.Errorf("abacus.place_names[%d] is empty", i)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Drill.Digits < 1 || c.Drill.Digits > 4 {
		return fmt.Errorf("drill.digits must be in [1,4], got %d", c.Drill.Digits)
	}
	if _, err := c.Curriculum(); err != nil {
		return err
	}
	if c.Battery.Workers < 0 {
		return fmt.Errorf("battery.workers must be >= 0, got %d", c.Battery.Workers)
	}
	if _, err := time.ParseDuration(c.Battery.Debounce); err != nil {
		return fmt.Errorf("battery.debounce: %w", err)
	}
	return nil
}

// Compiler returns a step compiler for the configured abacus.
func (c *Config) Compiler() *soroban.Compiler {
	opts := []soroban.Option{soroban.WithColumns(c.Abacus.Columns)}
	if len(c.Abacus.PlaceNames) > 0 {
		opts = append(opts, soroban.WithPlaceNames(soroban.PlaceNames(c.Abacus.PlaceNames)))
	}
	return soroban.NewCompiler(opts...)
}

// Curriculum returns the default zones overlaid with the configured ones.
func (c *Config) Curriculum() (*drill.Curriculum, error) {
	cur := drill.DefaultCurriculum()
	for id, z := range c.Drill.Zones {
		cur.Zones[id] = z
	}
	if err := cur.Validate(); err != nil {
		return nil, fmt.Errorf("drill.zones: %w", err)
	}
	return cur, nil
}

// GetDebounce returns the battery watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Battery.Debounce)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// FindWorkspaceRoot walks up from the working directory looking for a
// .sorokid directory, then a go.mod. It returns the working directory when
// neither is found.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, WorkspaceDir)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// DefaultConfigPath returns .sorokid/config.yaml under the workspace root.
func DefaultConfigPath() string {
	root, err := FindWorkspaceRoot()
	if err != nil {
		root = "."
	}
	return filepath.Join(root, WorkspaceDir, "config.yaml")
}
