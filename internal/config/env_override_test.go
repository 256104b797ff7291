package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("SOROKID_COLUMNS sets the abacus width", func(t *testing.T) {
		t.Setenv("SOROKID_COLUMNS", "13")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 13, cfg.Abacus.Columns)
	})

	t.Run("unparseable SOROKID_COLUMNS is ignored", func(t *testing.T) {
		t.Setenv("SOROKID_COLUMNS", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 9, cfg.Abacus.Columns)
	})

	t.Run("logging overrides", func(t *testing.T) {
		t.Setenv("SOROKID_LOG_LEVEL", "debug")
		t.Setenv("SOROKID_LOG_FORMAT", "json")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("SOROKID_BATTERY_WORKERS sets workers", func(t *testing.T) {
		t.Setenv("SOROKID_BATTERY_WORKERS", "3")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 3, cfg.Battery.Workers)
	})

	t.Run("empty variables leave config alone", func(t *testing.T) {
		t.Setenv("SOROKID_COLUMNS", "")
		t.Setenv("SOROKID_LOG_LEVEL", "")
		t.Setenv("SOROKID_LOG_FORMAT", "")
		t.Setenv("SOROKID_BATTERY_WORKERS", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}
