package config

import (
	"fmt"
	"os"

	"github.com/opscore/support-sim/internal/customer"
	"go.yaml.in/yaml/v3"
)

func LoadSimConfig() (*SimConfig, error) {
	path := os.Getenv("SIM_CONFIG_PATH")
	if path == "" {
		path = "configs/personas.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SimConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultSimConfig is used when no config file is present.
func DefaultSimConfig() *SimConfig {
	cfg := &SimConfig{
		Personas: []customer.Persona{
			{Name: "polite", Description: "Calm, cooperative customer who shares details readily.", InitialFrustration: 0.1},
			{Name: "frustrated", Description: "Customer who has already contacted support twice about this.", InitialFrustration: 0.5},
			{Name: "demanding", Description: "Impatient customer who expects immediate, concrete fixes.", InitialFrustration: 0.3},
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *SimConfig) {
	if cfg.Simulation.MaxTurns == 0 {
		cfg.Simulation.MaxTurns = 10
	}
	if cfg.Simulation.InterTurnDelayMs == 0 {
		cfg.Simulation.InterTurnDelayMs = 500
	}
	if cfg.Simulation.InterConversationDelayMs == 0 {
		cfg.Simulation.InterConversationDelayMs = 1000
	}
	if cfg.Simulation.InitialAgentMessage == "" {
		cfg.Simulation.InitialAgentMessage = "Hello! Thanks for contacting support. How can I help you today?"
	}
	if len(cfg.Personas) == 0 {
		cfg.Personas = DefaultSimConfig().Personas
	}
}

func (c *SimConfig) Validate() error {
	for _, persona := range c.Personas {
		if persona.Name == "" {
			return fmt.Errorf("persona with empty name")
		}
		if persona.InitialFrustration < 0 || persona.InitialFrustration > 1 {
			return fmt.Errorf("persona %s: initial_frustration %f out of range [0,1]",
				persona.Name, persona.InitialFrustration)
		}
	}

	for _, category := range c.Categories {
		if category.Label == "" {
			return fmt.Errorf("category with empty label")
		}
		if len(category.Keywords) == 0 {
			return fmt.Errorf("category %s: no keywords", category.Label)
		}
	}

	if c.Simulation.MaxTurns < 1 {
		return fmt.Errorf("simulation.max_turns must be at least 1")
	}

	return nil
}

// Persona resolves a persona profile by name, falling back to the first
// configured persona, or to the built-in default when none are configured.
func (c *SimConfig) Persona(name string) customer.Persona {
	for _, persona := range c.Personas {
		if persona.Name == name {
			return persona
		}
	}
	if len(c.Personas) > 0 {
		return c.Personas[0]
	}
	return DefaultSimConfig().Personas[0]
}

// PolicyTitle returns the policy document title for a category, if set.
func (c *SimConfig) PolicyTitle(label string) string {
	for _, category := range c.Categories {
		if category.Label == label {
			return category.Policy
		}
	}
	return ""
}
