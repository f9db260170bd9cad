// Package contextmgr manages conversation history for LLM-backed agents:
// it accumulates messages, tracks their estimated token cost, and invokes
// the truncation engine when the conversation would no longer fit the
// model's context window.
package contextmgr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contextwindow/pkg/config"
	"contextwindow/pkg/logx"
	"contextwindow/pkg/metrics"
	"contextwindow/pkg/msg"
	"contextwindow/pkg/tokens"
	"contextwindow/pkg/window"
)

// ContextManager owns a conversation history and decides when to truncate
// it. The truncation engine itself is stateless; the manager supplies the
// policy (budget, recency window) from model configuration.
type ContextManager struct {
	messages  []msg.Message
	model     config.Model
	estimator tokens.Estimator
	logger    *logx.Logger
	recorder  metrics.Recorder
}

// Option configures a ContextManager.
type Option func(*ContextManager)

// WithEstimator overrides the default character-based token estimator.
func WithEstimator(est tokens.Estimator) Option {
	return func(cm *ContextManager) {
		if est != nil {
			cm.estimator = est
		}
	}
}

// WithLogger attaches a logger for truncation events.
func WithLogger(logger *logx.Logger) Option {
	return func(cm *ContextManager) {
		cm.logger = logger
	}
}

// WithRecorder attaches a metrics recorder for truncation events.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(cm *ContextManager) {
		if recorder != nil {
			cm.recorder = recorder
		}
	}
}

// NewContextManager creates a manager for the given model configuration.
func NewContextManager(model config.Model, opts ...Option) *ContextManager {
	cm := &ContextManager{
		messages:  make([]msg.Message, 0),
		model:     model,
		estimator: tokens.EstimateMessage,
		recorder:  metrics.Nop(),
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// AddMessage appends a role/content pair to the history. Blank content is
// ignored; content is trimmed. Returns the stored message ID, or the empty
// string when the message was dropped.
func (cm *ContextManager) AddMessage(role msg.Role, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	id := uuid.NewString()
	cm.messages = append(cm.messages, msg.Message{ID: id, Role: role, Content: content})
	return id
}

// AddUserMessage appends a user message.
func (cm *ContextManager) AddUserMessage(content string) string {
	return cm.AddMessage(msg.RoleUser, content)
}

// AddAssistantMessage appends an assistant message.
func (cm *ContextManager) AddAssistantMessage(content string) string {
	return cm.AddMessage(msg.RoleAssistant, content)
}

// AddSystemMessage appends a system message.
func (cm *ContextManager) AddSystemMessage(content string) string {
	return cm.AddMessage(msg.RoleSystem, content)
}

// AddToolUse appends an assistant message carrying a tool invocation. A
// blank toolUseID gets a generated one; the effective ID is returned so the
// caller can route the result back.
func (cm *ContextManager) AddToolUse(toolUseID, name string, input map[string]any) string {
	if toolUseID == "" {
		toolUseID = uuid.NewString()
	}
	cm.messages = append(cm.messages, msg.NewToolUseMessage(uuid.NewString(), toolUseID, name, input))
	return toolUseID
}

// AddToolResult appends a tool message answering the given invocation.
func (cm *ContextManager) AddToolResult(toolUseID, content string, isError bool) string {
	id := uuid.NewString()
	cm.messages = append(cm.messages, msg.NewToolResultMessage(id, toolUseID, content, isError))
	return id
}

// CountTokens returns the estimated token cost of the full history.
func (cm *ContextManager) CountTokens() int {
	total := 0
	for i := range cm.messages {
		total += cm.estimator(cm.messages[i])
	}
	return total
}

// ShouldTruncate reports whether the history plus a maximum-size reply plus
// the safety buffer would overflow the model's context window.
func (cm *ContextManager) ShouldTruncate() bool {
	return cm.CountTokens()+cm.model.MaxReplyTokens+cm.model.TruncationBuffer > cm.model.MaxContextTokens
}

// TruncateIfNeeded runs the truncation engine when ShouldTruncate is true
// and keeps the surviving messages. It returns the IDs of evicted messages;
// nil when no truncation was needed.
//
// A history that still exceeds the budget after truncation (everything
// remaining is protected) is kept as is and reported through logs and
// metrics, never as an error.
func (cm *ContextManager) TruncateIfNeeded() []string {
	if !cm.ShouldTruncate() {
		return nil
	}

	target := cm.model.TruncationTarget()
	opts := window.DefaultOptions(target)
	opts.RecentCount = cm.model.RecentCount
	opts.Tokenizer = cm.estimator

	before := cm.CountTokens()
	start := time.Now()
	result := window.Truncate(cm.messages, opts)
	budgetMet := result.TokenCount <= target

	cm.messages = result.Messages
	cm.recorder.ObserveTruncation(cm.model.Name, result.RemovedCount, before-result.TokenCount, budgetMet, time.Since(start))
	if !budgetMet {
		cm.recorder.IncOverBudget(cm.model.Name)
		cm.logger.Warn("truncation left %d tokens against a %d budget; all remaining messages are protected",
			result.TokenCount, target)
	}
	cm.logger.Debug("truncated %d messages (%d -> %d tokens, target %d)",
		result.RemovedCount, before, result.TokenCount, target)

	return result.RemovedIDs
}

// GetMessages returns a copy of all messages in the history.
func (cm *ContextManager) GetMessages() []msg.Message {
	result := make([]msg.Message, len(cm.messages))
	copy(result, cm.messages)
	return result
}

// GetMessageCount returns the number of messages in the history.
func (cm *ContextManager) GetMessageCount() int {
	return len(cm.messages)
}

// Clear removes all messages from the history.
func (cm *ContextManager) Clear() {
	cm.messages = cm.messages[:0]
}

// ContextSummary returns a brief human-readable summary of the history.
func (cm *ContextManager) ContextSummary() string {
	if len(cm.messages) == 0 {
		return "Empty context"
	}

	roleCounts := make(map[msg.Role]int)
	for i := range cm.messages {
		roleCounts[cm.messages[i].Role]++
	}
	var breakdown []string
	for _, role := range []msg.Role{msg.RoleSystem, msg.RoleUser, msg.RoleAssistant, msg.RoleTool} {
		if count := roleCounts[role]; count > 0 {
			breakdown = append(breakdown, fmt.Sprintf("%s: %d", role, count))
		}
	}
	return fmt.Sprintf("%d messages (%d tokens) - %s",
		len(cm.messages), cm.CountTokens(), strings.Join(breakdown, ", "))
}

// TruncationInfo returns the current window state for introspection.
func (cm *ContextManager) TruncationInfo() map[string]any {
	current := cm.CountTokens()
	target := cm.model.TruncationTarget()
	return map[string]any{
		"current_tokens":      current,
		"message_count":       len(cm.messages),
		"should_truncate":     cm.ShouldTruncate(),
		"max_context_tokens":  cm.model.MaxContextTokens,
		"max_reply_tokens":    cm.model.MaxReplyTokens,
		"truncation_buffer":   cm.model.TruncationBuffer,
		"truncation_target":   target,
		"tokens_over_target":  current - target,
		"available_for_reply": cm.model.MaxContextTokens - current,
	}
}
