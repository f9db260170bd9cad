// Package tokens provides token estimation for conversation messages.
//
// The default estimator is a character-based heuristic (4 chars ≈ 1 token).
// It is not provider-exact; callers that need exact counts either attach a
// precomputed count to the message or inject a tiktoken-backed estimator.
package tokens

import (
	"encoding/json"

	"contextwindow/pkg/msg"
)

// CharsPerToken is the character-to-token ratio used by the structural
// fallback. Roughly right for English text and code.
const CharsPerToken = 4

// Image cost constants, expressed in character-equivalents so they survive
// the final divide-by-CharsPerToken ceiling as provider-shaped token counts.
const (
	// imagePixelsPerToken matches the ~(width*height)/750 token cost
	// charged for images with known dimensions.
	imagePixelsPerToken = 750
	// imageFallbackTokens is charged when dimensions are unknown.
	imageFallbackTokens = 258
)

// Estimator converts a message into a token count. Implementations must be
// pure and side-effect-free.
type Estimator func(m msg.Message) int

// EstimateMessage returns the estimated token cost of a message.
//
// A precomputed Message.Tokens value is returned unchanged. Otherwise the
// cost is derived structurally: string content at CharsPerToken, part lists
// by summing per-part character-equivalents before a single ceiling
// division. Malformed or empty content costs zero; this never fails.
func EstimateMessage(m msg.Message) int {
	if m.Tokens > 0 {
		return m.Tokens
	}
	if len(m.Parts) == 0 {
		return ceilDiv(len(m.Content), CharsPerToken)
	}
	total := 0
	for _, p := range m.Parts {
		total += partChars(p)
	}
	return ceilDiv(total, CharsPerToken)
}

// EstimateMessages sums EstimateMessage over a slice.
func EstimateMessages(messages []msg.Message) int {
	total := 0
	for i := range messages {
		total += EstimateMessage(messages[i])
	}
	return total
}

// FitsInBudget reports whether the total estimated cost of messages is at
// most budget. A nil estimator uses EstimateMessage.
func FitsInBudget(messages []msg.Message, budget int, est Estimator) bool {
	if est == nil {
		est = EstimateMessage
	}
	total := 0
	for i := range messages {
		total += est(messages[i])
	}
	return total <= budget
}

// partChars returns the character-equivalent cost of one content part.
func partChars(p msg.Part) int {
	switch part := p.(type) {
	case msg.TextPart:
		return len(part.Text)
	case msg.ToolUsePart:
		chars := len(part.Name)
		if part.Input != nil {
			if data, err := json.Marshal(part.Input); err == nil {
				chars += len(data)
			}
		}
		return chars
	case msg.ToolResultPart:
		if part.Content != "" {
			return len(part.Content)
		}
		chars := 0
		for _, nested := range part.Parts {
			if text, ok := nested.(msg.TextPart); ok {
				chars += len(text.Text)
			}
		}
		return chars
	case msg.ImagePart:
		if part.Width > 0 && part.Height > 0 {
			return ceilDiv(part.Width*part.Height, imagePixelsPerToken) * CharsPerToken
		}
		return imageFallbackTokens * CharsPerToken
	default:
		return 0
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
