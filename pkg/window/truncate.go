package window

import (
	"contextwindow/pkg/msg"
	"contextwindow/pkg/tokens"
)

// DefaultRecentCount is the number of trailing messages protected by the
// recency window when callers do not choose their own.
const DefaultRecentCount = 3

// Options configures a truncation call. Use DefaultOptions to get the
// standard recency window and pair preservation; a zero Options value
// protects nothing and splits pairs, which is almost never what a caller
// wants.
type Options struct {
	// TargetTokens is the budget the surviving messages should fit in.
	// Values <= 0 are accepted literally: the engine attempts maximum
	// eviction subject to protections. Validating the budget is the
	// caller's contract.
	TargetTokens int
	// RecentCount protects the trailing N messages via PriorityRecent.
	RecentCount int
	// PreserveToolPairs evicts tool call/result groups atomically.
	PreserveToolPairs bool
	// Tokenizer overrides the character-based estimator, e.g. with a
	// provider-exact counter. Must be pure. Nil uses the default.
	Tokenizer tokens.Estimator
}

// DefaultOptions returns truncation options with the given budget, the
// default recency window, and tool-pair preservation enabled.
func DefaultOptions(targetTokens int) Options {
	return Options{
		TargetTokens:      targetTokens,
		RecentCount:       DefaultRecentCount,
		PreserveToolPairs: true,
	}
}

// Result reports the outcome of a truncation call. The caller takes
// ownership of Messages; the input slice is never mutated.
//
// TokenCount may still exceed the target when every remaining message is
// protected or pair-constrained. That is a reported outcome, not an error:
// the engine guarantees conversational correctness over strict budget
// adherence, and the caller decides how to react.
type Result struct {
	Messages     []msg.Message
	RemovedCount int
	TokenCount   int
	RemovedIDs   []string
}

// Truncate removes the minimum set of messages needed to bring the
// estimated token total within opts.TargetTokens, evicting lowest-priority
// oldest-first and keeping tool call/result groups atomic. Survivors keep
// their input order.
func Truncate(messages []msg.Message, opts Options) Result {
	est := opts.Tokenizer
	if est == nil {
		est = tokens.EstimateMessage
	}
	recentCount := opts.RecentCount
	if recentCount < 0 {
		recentCount = 0
	}

	currentTokens := 0
	for i := range messages {
		currentTokens += est(messages[i])
	}
	if len(messages) == 0 || currentTokens <= opts.TargetTokens {
		return Result{Messages: messages, TokenCount: currentTokens}
	}

	total := len(messages)
	analysis := AnalyzeToolPairs(messages)
	candidates := truncationCandidates(messages, recentCount, analysis, est)

	removed := make(map[int]bool)
	for _, candidate := range candidates {
		if currentTokens <= opts.TargetTokens {
			break
		}
		if removed[candidate.Index] {
			continue
		}

		group := analysis.LinkedIndices(candidate.Index)
		if opts.PreserveToolPairs && len(group) > 0 {
			// Evaluate the group against its remaining members only:
			// indices already evicted earlier in this pass neither cost
			// tokens nor veto removability.
			groupTokens := 0
			removable := true
			for _, member := range group {
				if removed[member] {
					continue
				}
				if CalculatePriority(messages[member], member, total, recentCount, analysis) >= PriorityAnchor {
					removable = false
					break
				}
				groupTokens += est(messages[member])
			}
			if !removable {
				// A partially protected pair is never split.
				continue
			}
			for _, member := range group {
				removed[member] = true
			}
			currentTokens -= groupTokens
			continue
		}

		removed[candidate.Index] = true
		currentTokens -= candidate.Tokens
	}

	survivors := make([]msg.Message, 0, total-len(removed))
	removedIDs := make([]string, 0, len(removed))
	for i := range messages {
		if removed[i] {
			removedIDs = append(removedIDs, messages[i].ID)
			continue
		}
		survivors = append(survivors, messages[i])
	}
	return Result{
		Messages:     survivors,
		RemovedCount: len(removed),
		TokenCount:   currentTokens,
		RemovedIDs:   removedIDs,
	}
}
