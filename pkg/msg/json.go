package msg

import (
	"encoding/json"
	"fmt"
)

// Part type tags used on the wire.
const (
	partTypeText       = "text"
	partTypeToolUse    = "tool_use"
	partTypeToolResult = "tool_result"
	partTypeImage      = "image"
)

// partEnvelope is the serialized form of a Part. All fields are explicitly
// typed for reliable round-trip serialization; the Type tag selects which
// fields are meaningful.
//
//nolint:govet // struct alignment optimization not critical for serialization types.
type partEnvelope struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	Parts     []partEnvelope `json:"parts,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
	Source    string         `json:"source,omitempty"`
	MimeType  string         `json:"mime_type,omitempty"`
	Width     int            `json:"width,omitempty"`
	Height    int            `json:"height,omitempty"`
}

// serializedMessage mirrors Message with envelope-typed parts.
//
//nolint:govet // struct alignment optimization not critical for serialization types.
type serializedMessage struct {
	ID       string         `json:"id,omitempty"`
	Role     Role           `json:"role"`
	Content  string         `json:"content,omitempty"`
	Parts    []partEnvelope `json:"parts,omitempty"`
	Tokens   int            `json:"tokens,omitempty"`
	Priority int            `json:"priority,omitempty"`
}

// MarshalJSON serializes the message with tagged part envelopes.
func (m Message) MarshalJSON() ([]byte, error) {
	sm := serializedMessage{
		ID:       m.ID,
		Role:     m.Role,
		Content:  m.Content,
		Tokens:   m.Tokens,
		Priority: m.Priority,
	}
	if len(m.Parts) > 0 {
		sm.Parts = make([]partEnvelope, 0, len(m.Parts))
		for _, p := range m.Parts {
			sm.Parts = append(sm.Parts, partToEnvelope(p))
		}
	}
	data, err := json.Marshal(sm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}
	return data, nil
}

// UnmarshalJSON restores a message from its serialized form. Envelopes with
// an unknown type tag are dropped rather than rejected, so transcripts from
// newer producers still load.
func (m *Message) UnmarshalJSON(data []byte) error {
	var sm serializedMessage
	if err := json.Unmarshal(data, &sm); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	m.ID = sm.ID
	m.Role = sm.Role
	m.Content = sm.Content
	m.Tokens = sm.Tokens
	m.Priority = sm.Priority
	m.Parts = envelopesToParts(sm.Parts)
	return nil
}

func partToEnvelope(p Part) partEnvelope {
	switch part := p.(type) {
	case TextPart:
		return partEnvelope{Type: partTypeText, Text: part.Text}
	case ToolUsePart:
		return partEnvelope{Type: partTypeToolUse, ID: part.ID, Name: part.Name, Input: part.Input}
	case ToolResultPart:
		env := partEnvelope{
			Type:      partTypeToolResult,
			ToolUseID: part.ToolUseID,
			Content:   part.Content,
			IsError:   part.IsError,
		}
		if len(part.Parts) > 0 {
			env.Parts = make([]partEnvelope, 0, len(part.Parts))
			for _, nested := range part.Parts {
				env.Parts = append(env.Parts, partToEnvelope(nested))
			}
		}
		return env
	case ImagePart:
		return partEnvelope{
			Type:     partTypeImage,
			Source:   part.Source,
			MimeType: part.MimeType,
			Width:    part.Width,
			Height:   part.Height,
		}
	default:
		return partEnvelope{}
	}
}

func envelopeToPart(env partEnvelope) Part {
	switch env.Type {
	case partTypeText:
		return TextPart{Text: env.Text}
	case partTypeToolUse:
		return ToolUsePart{ID: env.ID, Name: env.Name, Input: env.Input}
	case partTypeToolResult:
		return ToolResultPart{
			ToolUseID: env.ToolUseID,
			Content:   env.Content,
			Parts:     envelopesToParts(env.Parts),
			IsError:   env.IsError,
		}
	case partTypeImage:
		return ImagePart{Source: env.Source, MimeType: env.MimeType, Width: env.Width, Height: env.Height}
	default:
		return nil
	}
}

func envelopesToParts(envs []partEnvelope) []Part {
	if len(envs) == 0 {
		return nil
	}
	parts := make([]Part, 0, len(envs))
	for _, env := range envs {
		if p := envelopeToPart(env); p != nil {
			parts = append(parts, p)
		}
	}
	return parts
}
