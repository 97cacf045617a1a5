package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAgents_EmbeddedDefaults(t *testing.T) {
	agents, err := LoadAgents()
	require.NoError(t, err)

	goals, err := agents.Agent("weekly_goals")
	require.NoError(t, err)
	require.Equal(t, "lock it in", goals.TriggerPhrase)
	require.Equal(t, 14, goals.TTLDays)
	require.Equal(t, 7, goals.WorkoutDays)
	require.Equal(t, 21, goals.WorkoutDaysThread)
	require.Equal(t, 60, goals.FrequencyDaysThread)

	planner, err := agents.Agent("planner")
	require.NoError(t, err)
	require.Equal(t, 21, planner.WorkoutDays)
	require.Equal(t, 7, planner.TTLDays)
	require.NotEmpty(t, planner.Model)

	report, err := agents.Agent("ski_report")
	require.NoError(t, err)
	require.Len(t, report.Resorts, 4)
	require.Equal(t, "Vail", report.Resorts[0].Name)
	require.InDelta(t, 39.6403, report.Resorts[0].Lat, 0.0001)
	require.InDelta(t, -106.3742, report.Resorts[0].Lon, 0.0001)
}

func TestLoadAgents_PathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  planner:\n    model: test-model\n"), 0o600))
	t.Setenv("AGENT_CONFIG_PATH", path)

	agents, err := LoadAgents()
	require.NoError(t, err)
	s, err := agents.Agent("planner")
	require.NoError(t, err)
	require.Equal(t, "test-model", s.Model)
}

func TestLoadAgents_BadOverride(t *testing.T) {
	t.Setenv("AGENT_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadAgents()
	require.Error(t, err)
}

func TestAgent_Unknown(t *testing.T) {
	agents, err := LoadAgents()
	require.NoError(t, err)
	_, err = agents.Agent("nope")
	require.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TB_TEST_STR", "value")
	require.Equal(t, "value", Env("TB_TEST_STR", "def"))
	require.Equal(t, "def", Env("TB_TEST_MISSING", "def"))

	t.Setenv("TB_TEST_INT", "42")
	require.Equal(t, 42, EnvInt("TB_TEST_INT", 7))
	require.Equal(t, 7, EnvInt("TB_TEST_INT_MISSING", 7))
	t.Setenv("TB_TEST_INT_BAD", "abc")
	require.Equal(t, 7, EnvInt("TB_TEST_INT_BAD", 7))
}
