// Package config holds environment helpers shared by the Lambda mains and
// the per-agent settings file.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed agents.yaml
var defaultAgentsYAML []byte

// AgentSettings are the tunables for one agent. Thread variants widen the
// context windows when the agent is continuing a conversation instead of
// producing its scheduled kickoff.
type AgentSettings struct {
	Model               string  `yaml:"model"`
	Temperature         float64 `yaml:"temperature"`
	MaxCompletionTokens int     `yaml:"max_completion_tokens"`
	TTLDays             int     `yaml:"ttl_days"`
	WorkoutDays         int     `yaml:"workout_days"`
	WorkoutDaysThread   int     `yaml:"workout_days_thread"`
	FrequencyDays       int     `yaml:"frequency_days"`
	FrequencyDaysThread int     `yaml:"frequency_days_thread"`
	TriggerPhrase       string  `yaml:"trigger_phrase"`

	// Resorts are the forecast points for the ski report.
	Resorts []Resort `yaml:"resorts"`
}

// Resort is one named forecast coordinate.
type Resort struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

// Agents maps agent tag to settings.
type Agents map[string]AgentSettings

type agentsFile struct {
	Agents Agents `yaml:"agents"`
}

// LoadAgents parses the embedded agent settings, or the file at
// AGENT_CONFIG_PATH when that variable is set.
func LoadAgents() (Agents, error) {
	raw := defaultAgentsYAML
	if path := os.Getenv("AGENT_CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		raw = b
	}
	var f agentsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parse agent settings: %w", err)
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("config: agent settings define no agents")
	}
	return f.Agents, nil
}

// Agent returns the settings for the given tag.
func (a Agents) Agent(tag string) (AgentSettings, error) {
	s, ok := a[tag]
	if !ok {
		return AgentSettings{}, fmt.Errorf("config: no settings for agent %q", tag)
	}
	return s, nil
}

// MustEnv reads a required environment variable, exiting when it is unset.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

// Env reads an environment variable with a default.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt reads an integer environment variable with a default.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
