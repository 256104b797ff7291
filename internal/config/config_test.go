package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sorokid/internal/drill"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Abacus.Columns != 9 {
		t.Errorf("expected Columns=9, got %d", cfg.Abacus.Columns)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SOROKID_COLUMNS", "")
	t.Setenv("SOROKID_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Abacus.Columns = 5
	cfg.Abacus.PlaceNames = []string{"Ones", "Tens"}
	cfg.Drill.Seed = 99

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Abacus.Columns != 5 {
		t.Errorf("expected Columns=5, got %d", loaded.Abacus.Columns)
	}
	if len(loaded.Abacus.PlaceNames) != 2 || loaded.Abacus.PlaceNames[1] != "Tens" {
		t.Errorf("unexpected place names: %v", loaded.Abacus.PlaceNames)
	}
	if loaded.Drill.Seed != 99 {
		t.Errorf("expected Seed=99, got %d", loaded.Drill.Seed)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("SOROKID_COLUMNS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Abacus.Columns != 9 {
		t.Errorf("expected default Columns=9, got %d", cfg.Abacus.Columns)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `battery:
  workers: 2
drill:
  zones:
    forest:
      allowed_skills: [friend10-add]
      practice_type: calculation
      digits: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Battery.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Battery.Workers)
	}
	if cfg.Battery.Debounce != "200ms" || cfg.Abacus.Columns != 9 {
		t.Errorf("defaults lost: %+v", cfg)
	}

	cur, err := cfg.Curriculum()
	if err != nil {
		t.Fatalf("Curriculum: %v", err)
	}
	if got := cur.ZoneFor("forest").AllowedSkills; len(got) != 1 || got[0] != drill.Friend10Add {
		t.Errorf("forest override not applied: %v", got)
	}
	if cur.ZoneFor("castle").Digits != 2 {
		t.Errorf("castle default lost")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("abacus: [oops"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero columns", func(c *Config) { c.Abacus.Columns = 0 }},
		{"too many columns", func(c *Config) { c.Abacus.Columns = MaxColumns + 1 }},
		{"empty place name", func(c *Config) { c.Abacus.PlaceNames = []string{"Ones", ""} }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad digits", func(c *Config) { c.Drill.Digits = 5 }},
		{"bad zone", func(c *Config) {
			c.Drill.Zones = map[string]drill.Zone{"x": {PracticeType: "dance", Digits: 1}}
		}},
		{"negative workers", func(c *Config) { c.Battery.Workers = -1 }},
		{"bad debounce", func(c *Config) { c.Battery.Debounce = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Abacus.Columns = 4
	cfg.Abacus.PlaceNames = []string{"Ones"}

	c := cfg.Compiler()
	if c.Columns() != 4 {
		t.Errorf("expected compiler columns=4, got %d", c.Columns())
	}
	seq := c.Generate("7 + 5", 12)
	if got := seq.Last().Title; got != "Subtract 5 from the Ones" {
		t.Errorf("place names not applied: %q", got)
	}

	if d := cfg.GetDebounce(); d != 200*time.Millisecond {
		t.Errorf("expected 200ms debounce, got %v", d)
	}
	cfg.Battery.Debounce = "nope"
	if d := cfg.GetDebounce(); d != 200*time.Millisecond {
		t.Errorf("expected fallback debounce, got %v", d)
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{Categories: map[string]bool{"battery": false, "watch": true}}
	if lc.IsCategoryEnabled("battery") {
		t.Error("battery should be disabled")
	}
	if !lc.IsCategoryEnabled("watch") || !lc.IsCategoryEnabled("cli") {
		t.Error("listed-true and unlisted categories should be enabled")
	}
}

// =============================================================================
// WORKSPACE ROOT TESTS
// =============================================================================

func TestFindWorkspaceRoot_PrefersSorokidDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, WorkspaceDir), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", WorkspaceDir, err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	t.Chdir(nested)

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
	if want := filepath.Join(root, WorkspaceDir, "config.yaml"); DefaultConfigPath() != want {
		t.Fatalf("DefaultConfigPath=%q, want %q", DefaultConfigPath(), want)
	}
}

func TestFindWorkspaceRoot_FallsBackToGoMod(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n\ngo 1.22\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	nested := filepath.Join(root, "subdir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	t.Chdir(nested)

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	if got != root {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}
