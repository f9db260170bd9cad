package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"

	"contextwindow/pkg/msg"
)

// NewTiktokenEstimator returns an Estimator that counts plain text with a
// tiktoken codec instead of the character heuristic. All supported models
// use the GPT-4 encoding; Claude tokenization is close enough that the
// approximation beats the character fallback.
//
// Structural costs (tool_use JSON, tool results, images) keep the
// character-equivalent rules: the codec only improves the text portions.
// Precomputed Message.Tokens values are still honored verbatim.
func NewTiktokenEstimator(model string) (Estimator, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}

	countText := func(text string) int {
		if text == "" {
			return 0
		}
		count, cerr := codec.Count(text)
		if cerr != nil {
			// Fallback to character-based estimation on error.
			return ceilDiv(len(text), CharsPerToken)
		}
		return count
	}

	return func(m msg.Message) int {
		if m.Tokens > 0 {
			return m.Tokens
		}
		if len(m.Parts) == 0 {
			return countText(m.Content)
		}
		total := 0
		for _, p := range m.Parts {
			switch part := p.(type) {
			case msg.TextPart:
				total += countText(part.Text)
			case msg.ToolResultPart:
				if part.Content != "" {
					total += countText(part.Content)
					continue
				}
				for _, nested := range part.Parts {
					if text, ok := nested.(msg.TextPart); ok {
						total += countText(text.Text)
					}
				}
			default:
				total += ceilDiv(partChars(p), CharsPerToken)
			}
		}
		return total
	}, nil
}
