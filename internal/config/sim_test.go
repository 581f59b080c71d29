package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opscore/support-sim/internal/customer"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadSimConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
personas:
  - name: polite
    description: Calm customer
    initial_frustration: 0.1
categories:
  - label: missing_points
    keywords: ["missing", "points"]
    policy: missing-points
simulation:
  max_turns: 6
`)
	t.Setenv("SIM_CONFIG_PATH", path)

	cfg, err := LoadSimConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Simulation.MaxTurns != 6 {
		t.Errorf("expected max_turns 6, got %d", cfg.Simulation.MaxTurns)
	}
	if cfg.Simulation.InterTurnDelayMs != 500 {
		t.Errorf("expected default inter_turn_delay_ms 500, got %d", cfg.Simulation.InterTurnDelayMs)
	}
	if cfg.PolicyTitle("missing_points") != "missing-points" {
		t.Errorf("unexpected policy title %q", cfg.PolicyTitle("missing_points"))
	}
}

func TestLoadSimConfig_InvalidFrustration(t *testing.T) {
	path := writeConfig(t, `
personas:
  - name: broken
    initial_frustration: 1.5
`)
	t.Setenv("SIM_CONFIG_PATH", path)

	if _, err := LoadSimConfig(); err == nil {
		t.Error("expected validation error for out-of-range frustration")
	}
}

func TestLoadSimConfig_CategoryWithoutKeywords(t *testing.T) {
	path := writeConfig(t, `
categories:
  - label: empty_one
    keywords: []
`)
	t.Setenv("SIM_CONFIG_PATH", path)

	if _, err := LoadSimConfig(); err == nil {
		t.Error("expected validation error for keywordless category")
	}
}

func TestPersonaLookup(t *testing.T) {
	cfg := &SimConfig{
		Personas: []customer.Persona{
			{Name: "polite"},
			{Name: "demanding", InitialFrustration: 0.3},
		},
	}

	if got := cfg.Persona("demanding"); got.InitialFrustration != 0.3 {
		t.Errorf("unexpected persona: %+v", got)
	}
	if got := cfg.Persona("unknown"); got.Name != "polite" {
		t.Errorf("expected fallback to first persona, got %s", got.Name)
	}

	empty := &SimConfig{}
	if got := empty.Persona("anyone"); got.Name == "" {
		t.Error("expected the built-in default persona when none are configured")
	}
}

func TestDefaultSimConfig(t *testing.T) {
	cfg := DefaultSimConfig()

	if len(cfg.Personas) == 0 {
		t.Fatal("expected default personas")
	}
	if cfg.Simulation.MaxTurns != 10 {
		t.Errorf("expected default max_turns 10, got %d", cfg.Simulation.MaxTurns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
