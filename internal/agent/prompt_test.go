package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrompt_PreservesSectionOrder(t *testing.T) {
	out := NewPrompt("Be a coach.").
		Add("Today", "Monday").
		Add("Recent training", "Squats").
		String()

	require.Equal(t, "Be a coach.\n\nToday:\nMonday\n\nRecent training:\nSquats", out)
}

func TestPrompt_SkipsEmptySections(t *testing.T) {
	out := NewPrompt("Instructions.").
		Add("Empty", "   ").
		Add("Kept", "value").
		String()

	require.Equal(t, "Instructions.\n\nKept:\nvalue", out)
}

func TestPrompt_EmptyInstructions(t *testing.T) {
	out := NewPrompt("").Add("Only", "section").String()
	require.Equal(t, "Only:\nsection", out)
}
