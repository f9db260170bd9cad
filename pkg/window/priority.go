package window

import "contextwindow/pkg/msg"

// Priority classifies how valuable a message is to the conversation.
// Lower values are evicted first. System and anchor messages are never
// eviction candidates.
type Priority int

const (
	// PriorityNormal marks ordinary conversation turns, evicted first.
	PriorityNormal Priority = 30
	// PriorityToolPair marks members of a tool call/result group.
	PriorityToolPair Priority = 70
	// PriorityRecent marks messages inside the trailing recency window.
	PriorityRecent Priority = 80
	// PriorityAnchor marks the opening user message that states the task.
	PriorityAnchor Priority = 90
	// PrioritySystem marks system prompts.
	PrioritySystem Priority = 100
)

// CalculatePriority classifies one message. Rules are evaluated in order,
// first match wins:
//
//  1. system role
//  2. user message at index 0 or 1 (covers the common "system at 0,
//     first user at 1" layout)
//  3. inside the trailing recentCount window
//  4. member of a tool-pair group
//  5. normal
//
// When recentCount >= total every otherwise-unprotected message classifies
// as recent; that is intentional and makes the whole tail unremovable only
// by explicit caller choice.
func CalculatePriority(m msg.Message, index, total, recentCount int, analysis *ToolPairAnalysis) Priority {
	switch {
	case m.Role == msg.RoleSystem:
		return PrioritySystem
	case m.Role == msg.RoleUser && index <= 1:
		return PriorityAnchor
	case recentCount > 0 && index >= total-recentCount:
		return PriorityRecent
	case analysis.IsPaired(index):
		return PriorityToolPair
	default:
		return PriorityNormal
	}
}

// AssignPriorities classifies every message and writes the result into its
// Priority field in place. Callers sharing message values across goroutines
// must serialize calls to this helper or copy first; the truncation path
// itself never mutates and derives priorities on demand.
func AssignPriorities(messages []msg.Message, recentCount int, analysis *ToolPairAnalysis) {
	total := len(messages)
	for i := range messages {
		messages[i].Priority = int(CalculatePriority(messages[i], i, total, recentCount, analysis))
	}
}
