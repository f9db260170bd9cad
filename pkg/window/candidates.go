package window

import (
	"sort"

	"contextwindow/pkg/msg"
	"contextwindow/pkg/tokens"
)

// Candidate is an eviction candidate: a message index with its priority
// class and estimated token cost. Candidates are ephemeral, rebuilt on
// every truncation call.
type Candidate struct {
	Index    int
	Priority Priority
	Tokens   int
}

// TruncationCandidates returns the eviction candidates for messages,
// ordered by eviction preference: ascending priority, ties broken by index
// so older messages go first. System and anchor messages are excluded;
// they are never evicted.
func TruncationCandidates(messages []msg.Message, recentCount int, analysis *ToolPairAnalysis) []Candidate {
	return truncationCandidates(messages, recentCount, analysis, tokens.EstimateMessage)
}

func truncationCandidates(messages []msg.Message, recentCount int, analysis *ToolPairAnalysis, est tokens.Estimator) []Candidate {
	total := len(messages)
	candidates := make([]Candidate, 0, total)
	for i := range messages {
		priority := CalculatePriority(messages[i], i, total, recentCount, analysis)
		if priority >= PriorityAnchor {
			continue
		}
		candidates = append(candidates, Candidate{
			Index:    i,
			Priority: priority,
			Tokens:   est(messages[i]),
		})
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Priority != candidates[b].Priority {
			return candidates[a].Priority < candidates[b].Priority
		}
		return candidates[a].Index < candidates[b].Index
	})
	return candidates
}
