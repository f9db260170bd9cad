// Package window implements priority-based sliding-window truncation of
// conversation histories. It keeps a message sequence inside a token budget
// by evicting the least valuable messages while never orphaning a tool
// result or dropping protected messages.
package window

import (
	"sort"

	"contextwindow/pkg/msg"
)

// ToolPairAnalysis maps message indices to the atomic groups they belong
// to. A group is a tool invocation plus every message carrying a result for
// it; groups sharing a message are merged, so LinkedIndices always returns
// the full transitive set that must be evicted together.
//
// Indices are positions in the message slice the analysis was built from,
// not message IDs. The analysis is immutable once built.
type ToolPairAnalysis struct {
	groups map[int][]int
}

// AnalyzeToolPairs scans messages in a single forward pass and links every
// tool_use part to the tool_result parts that answer it. A tool call may
// have multiple result messages (parallel tool calls); all of them form one
// atomic group with the call. Dangling results whose toolUseId matches no
// earlier tool_use are never linked; they behave as ordinary messages.
func AnalyzeToolPairs(messages []msg.Message) *ToolPairAnalysis {
	// useIndex maps a tool_use id to the message index that issued it.
	useIndex := make(map[string]int)
	// adjacency between mutually linked message indices.
	links := make(map[int]map[int]struct{})

	link := func(a, b int) {
		if links[a] == nil {
			links[a] = make(map[int]struct{})
		}
		if links[b] == nil {
			links[b] = make(map[int]struct{})
		}
		links[a][b] = struct{}{}
		links[b][a] = struct{}{}
	}

	for i := range messages {
		for _, p := range messages[i].Parts {
			switch part := p.(type) {
			case msg.ToolUsePart:
				if part.ID != "" {
					useIndex[part.ID] = i
				}
			case msg.ToolResultPart:
				// A result may answer a use in the same or an earlier
				// message; anything else is dangling and stays unlinked.
				ui, ok := useIndex[part.ToolUseID]
				if !ok {
					continue
				}
				link(ui, i)
			case msg.TextPart, msg.ImagePart:
				// Not pair-relevant.
			}
		}
	}

	// Collapse the adjacency into connected components so a message shared
	// between two tool calls carries both calls in its group.
	analysis := &ToolPairAnalysis{groups: make(map[int][]int)}
	visited := make(map[int]bool)
	for start := range links {
		if visited[start] {
			continue
		}
		component := []int{}
		stack := []int{start}
		visited[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, n)
			for neighbor := range links[n] {
				if !visited[neighbor] {
					visited[neighbor] = true
					stack = append(stack, neighbor)
				}
			}
		}
		sort.Ints(component)
		for _, index := range component {
			analysis.groups[index] = component
		}
	}
	return analysis
}

// LinkedIndices returns every message index that must be evicted together
// with index, including index itself. It returns nil when the message is
// not part of any tool pair, signaling "not pair-constrained".
func (a *ToolPairAnalysis) LinkedIndices(index int) []int {
	if a == nil {
		return nil
	}
	return a.groups[index]
}

// IsPaired reports whether index belongs to any tool-pair group.
func (a *ToolPairAnalysis) IsPaired(index int) bool {
	if a == nil {
		return false
	}
	_, ok := a.groups[index]
	return ok
}

// PairedCount returns the number of messages that belong to some group.
func (a *ToolPairAnalysis) PairedCount() int {
	if a == nil {
		return 0
	}
	return len(a.groups)
}
