package domain

// Agent identifies which conversational agent owns a thread turn. The set is
// closed: anything outside it parses to AgentUnknown and routing falls back
// to the configured default.
type Agent string

const (
	AgentWorkoutPlanner Agent = "planner"
	AgentDailyPlanner   Agent = "daily_planner"
	AgentWeeklyGoals    Agent = "weekly_goals"
	AgentCoachDoc       Agent = "coach_doc_refresher"
	AgentWeeklyReview   Agent = "weekly_review"
	AgentAnalyzer       Agent = "analyzer"
	AgentUnknown        Agent = ""
)

var knownAgents = map[Agent]struct{}{
	AgentWorkoutPlanner: {},
	AgentDailyPlanner:   {},
	AgentWeeklyGoals:    {},
	AgentCoachDoc:       {},
	AgentWeeklyReview:   {},
	AgentAnalyzer:       {},
}

// ParseAgent maps a stored agent tag to a known Agent, or AgentUnknown.
func ParseAgent(s string) Agent {
	a := Agent(s)
	if _, ok := knownAgents[a]; ok {
		return a
	}
	return AgentUnknown
}

// Known reports whether the agent is a member of the closed set.
func (a Agent) Known() bool {
	_, ok := knownAgents[a]
	return ok
}

func (a Agent) String() string {
	return string(a)
}
