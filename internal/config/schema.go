package config

import (
	"github.com/opscore/support-sim/internal/customer"
)

// SimConfig is the file-backed part of the simulator setup: personas,
// category keyword tables, and pacing defaults.
type SimConfig struct {
	Personas   []customer.Persona `yaml:"personas"`
	Categories []CategoryConfig   `yaml:"categories"`
	Simulation SimulationConfig   `yaml:"simulation"`
}

// CategoryConfig maps an intent label to its keyword set and the policy
// document used to ground agent responses for that category.
type CategoryConfig struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Policy   string   `yaml:"policy,omitempty"`
}

type SimulationConfig struct {
	MaxTurns                 int    `yaml:"max_turns"`
	InterTurnDelayMs         int    `yaml:"inter_turn_delay_ms"`
	InterConversationDelayMs int    `yaml:"inter_conversation_delay_ms"`
	InitialAgentMessage      string `yaml:"initial_agent_message"`
}
