// Package msg defines the provider-neutral message model shared by the
// token estimator, the truncation engine, and the conversation manager.
package msg

// Role represents the role of a message in a conversation.
type Role string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem Role = "system"
	// RoleUser indicates a message from the human user.
	RoleUser Role = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant Role = "assistant"
	// RoleTool indicates a message carrying tool results back to the model.
	RoleTool Role = "tool"
)

// Message is a single entry in the conversation history. Content carries
// plain-text messages; Parts carries structured content (tool calls, tool
// results, images). A message uses one or the other, never both.
//
//nolint:govet // fieldalignment: value semantics preferred over pointer indirection
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`

	// Tokens is an optional precomputed token count supplied by callers
	// that have provider-exact usage numbers. Zero means "not set" and
	// the estimator falls back to structural estimation.
	Tokens int `json:"tokens,omitempty"`

	// Priority is written by window.AssignPriorities when bulk
	// classification is requested. The truncation engine itself derives
	// priorities on demand and never reads this field.
	Priority int `json:"priority,omitempty"`
}

// Part is a closed union of structured content blocks. The estimator and
// the tool-pair analyzer switch exhaustively over the concrete types, so a
// new part type is a forced compile-time update, not a silent no-op.
type Part interface {
	isPart()
}

// TextPart is a plain text block.
type TextPart struct {
	Text string `json:"text"`
}

// ToolUsePart records a tool invocation made by the assistant.
type ToolUsePart struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input,omitempty"`
}

// ToolResultPart carries the output of a tool invocation. Content holds
// string output; Parts holds structured output. A result references its
// invocation through ToolUseID.
//
//nolint:govet // fieldalignment: logical grouping preferred
type ToolResultPart struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content,omitempty"`
	Parts     []Part `json:"parts,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ImagePart references an image attachment. Width and Height are zero when
// the dimensions are unknown.
type ImagePart struct {
	Source   string `json:"source"`
	MimeType string `json:"mime_type,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (TextPart) isPart()       {}
func (ToolUsePart) isPart()    {}
func (ToolResultPart) isPart() {}
func (ImagePart) isPart()      {}

// NewSystemMessage creates a new system message.
func NewSystemMessage(id, content string) Message {
	return Message{ID: id, Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(id, content string) Message {
	return Message{ID: id, Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(id, content string) Message {
	return Message{ID: id, Role: RoleAssistant, Content: content}
}

// NewToolUseMessage creates an assistant message containing a single tool
// invocation.
func NewToolUseMessage(id, toolUseID, name string, input map[string]any) Message {
	return Message{
		ID:    id,
		Role:  RoleAssistant,
		Parts: []Part{ToolUsePart{ID: toolUseID, Name: name, Input: input}},
	}
}

// NewToolResultMessage creates a tool message answering the given tool
// invocation.
func NewToolResultMessage(id, toolUseID, content string, isError bool) Message {
	return Message{
		ID:    id,
		Role:  RoleTool,
		Parts: []Part{ToolResultPart{ToolUseID: toolUseID, Content: content, IsError: isError}},
	}
}
