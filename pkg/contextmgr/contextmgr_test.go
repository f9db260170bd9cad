package contextmgr

import (
	"strings"
	"testing"

	"contextwindow/pkg/config"
	"contextwindow/pkg/msg"
)

// smallModel returns a model config with a tiny window so truncation
// triggers from a handful of messages.
func smallModel() config.Model {
	return config.Model{
		Name:             "test-model",
		MaxContextTokens: 100,
		MaxReplyTokens:   20,
		TruncationBuffer: 10,
		RecentCount:      1,
	}
}

func TestNewContextManager(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))

	if cm == nil {
		t.Fatal("Expected NewContextManager to return non-nil instance")
	}
	if cm.GetMessageCount() != 0 {
		t.Errorf("Expected new context manager to have 0 messages, got %d", cm.GetMessageCount())
	}
	if cm.CountTokens() != 0 {
		t.Errorf("Expected new context manager to have 0 tokens, got %d", cm.CountTokens())
	}
}

func TestAddMessage(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))

	id := cm.AddUserMessage("Hello world")
	if id == "" {
		t.Error("Expected AddUserMessage to return a message ID")
	}
	if cm.GetMessageCount() != 1 {
		t.Errorf("Expected 1 message after adding, got %d", cm.GetMessageCount())
	}

	cm.AddAssistantMessage("Hi there!")
	messages := cm.GetMessages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != msg.RoleUser || messages[0].Content != "Hello world" {
		t.Errorf("Unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != msg.RoleAssistant || messages[1].Content != "Hi there!" {
		t.Errorf("Unexpected second message: %+v", messages[1])
	}
}

func TestAddMessageValidation(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))

	// Empty and whitespace-only content is ignored.
	if id := cm.AddUserMessage(""); id != "" {
		t.Error("Expected empty message to be dropped")
	}
	if id := cm.AddUserMessage("   \n\t  "); id != "" {
		t.Error("Expected whitespace message to be dropped")
	}
	if cm.GetMessageCount() != 0 {
		t.Errorf("Expected 0 messages, got %d", cm.GetMessageCount())
	}

	// Content is trimmed.
	cm.AddUserMessage("  trimmed content  ")
	messages := cm.GetMessages()
	if messages[0].Content != "trimmed content" {
		t.Errorf("Content should be trimmed, got '%s'", messages[0].Content)
	}
}

func TestAddToolUseAndResult(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))

	toolUseID := cm.AddToolUse("", "shell", map[string]any{"cmd": "ls"})
	if toolUseID == "" {
		t.Fatal("Expected AddToolUse to generate a tool use ID")
	}
	cm.AddToolResult(toolUseID, "main.go", false)

	messages := cm.GetMessages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}

	use, ok := messages[0].Parts[0].(msg.ToolUsePart)
	if !ok {
		t.Fatalf("Expected first message to carry a tool use part, got %+v", messages[0].Parts[0])
	}
	result, ok := messages[1].Parts[0].(msg.ToolResultPart)
	if !ok {
		t.Fatalf("Expected second message to carry a tool result part, got %+v", messages[1].Parts[0])
	}
	if result.ToolUseID != use.ID {
		t.Errorf("Tool result should reference the tool use: %s != %s", result.ToolUseID, use.ID)
	}
}

func TestGetMessagesReturnsCopy(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))
	cm.AddUserMessage("Hello")

	messages := cm.GetMessages()
	messages[0].Content = "Modified"

	if cm.GetMessages()[0].Content != "Hello" {
		t.Error("GetMessages should return a copy, not the original slice")
	}
}

func TestClear(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))
	cm.AddUserMessage("Hello")
	cm.AddAssistantMessage("Hi")

	cm.Clear()

	if cm.GetMessageCount() != 0 {
		t.Errorf("Expected 0 messages after clear, got %d", cm.GetMessageCount())
	}
	if cm.CountTokens() != 0 {
		t.Errorf("Expected 0 tokens after clear, got %d", cm.CountTokens())
	}
}

func TestShouldTruncate(t *testing.T) {
	cm := NewContextManager(smallModel())

	cm.AddUserMessage("short")
	if cm.ShouldTruncate() {
		t.Error("Expected no truncation need for a short history")
	}

	// Window is 100 with 30 reserved; ~75 tokens of content crosses it.
	cm.AddAssistantMessage(strings.Repeat("x", 300))
	if !cm.ShouldTruncate() {
		t.Errorf("Expected truncation need at %d tokens", cm.CountTokens())
	}
}

func TestTruncateIfNeededNoop(t *testing.T) {
	cm := NewContextManager(smallModel())
	cm.AddUserMessage("short")

	if removed := cm.TruncateIfNeeded(); removed != nil {
		t.Errorf("Expected no evictions, got %v", removed)
	}
	if cm.GetMessageCount() != 1 {
		t.Errorf("Expected history to be untouched, got %d messages", cm.GetMessageCount())
	}
}

func TestTruncateIfNeededPreservesSystemAndAnchor(t *testing.T) {
	cm := NewContextManager(smallModel())

	cm.AddSystemMessage("You are a helpful assistant")
	cm.AddUserMessage("Build the feature")
	cm.AddAssistantMessage(strings.Repeat("a", 200))
	cm.AddAssistantMessage(strings.Repeat("b", 200))
	cm.AddUserMessage("status?")

	removed := cm.TruncateIfNeeded()
	if len(removed) == 0 {
		t.Fatal("Expected truncation to evict messages")
	}

	messages := cm.GetMessages()
	if messages[0].Role != msg.RoleSystem {
		t.Errorf("System prompt was not preserved: %+v", messages[0])
	}
	if messages[1].Role != msg.RoleUser || messages[1].Content != "Build the feature" {
		t.Errorf("Anchor user message was not preserved: %+v", messages[1])
	}
	if messages[len(messages)-1].Content != "status?" {
		t.Errorf("Most recent message was not preserved: %+v", messages[len(messages)-1])
	}
}

func TestTruncateIfNeededEvictsToolPairsTogether(t *testing.T) {
	cm := NewContextManager(smallModel())

	cm.AddSystemMessage("system")
	cm.AddUserMessage("task")
	toolUseID := cm.AddToolUse("", "shell", map[string]any{"cmd": "cat big.log"})
	cm.AddToolResult(toolUseID, strings.Repeat("log line\n", 60), false)
	cm.AddUserMessage("summarize that")

	removed := cm.TruncateIfNeeded()
	if len(removed) != 2 {
		t.Fatalf("Expected the tool pair to be evicted together, got %d evictions", len(removed))
	}

	for _, m := range cm.GetMessages() {
		for _, p := range m.Parts {
			if _, ok := p.(msg.ToolResultPart); ok {
				t.Error("Orphaned tool result survived truncation")
			}
			if _, ok := p.(msg.ToolUsePart); ok {
				t.Error("Orphaned tool use survived truncation")
			}
		}
	}
}

func TestContextSummary(t *testing.T) {
	cm := NewContextManager(config.Defaults(config.ModelClaudeSonnet))

	if summary := cm.ContextSummary(); summary != "Empty context" {
		t.Errorf("Expected 'Empty context' for empty manager, got '%s'", summary)
	}

	cm.AddUserMessage("Hello")
	cm.AddAssistantMessage("Hi")
	cm.AddUserMessage("How are you?")

	summary := cm.ContextSummary()
	if !strings.Contains(summary, "3 messages") {
		t.Errorf("Expected summary to contain '3 messages', got '%s'", summary)
	}
	if !strings.Contains(summary, "user: 2") {
		t.Errorf("Expected summary to contain 'user: 2', got '%s'", summary)
	}
	if !strings.Contains(summary, "assistant: 1") {
		t.Errorf("Expected summary to contain 'assistant: 1', got '%s'", summary)
	}
}

func TestTruncationInfo(t *testing.T) {
	cm := NewContextManager(smallModel())
	cm.AddUserMessage("Test message")

	info := cm.TruncationInfo()
	for _, key := range []string{"current_tokens", "message_count", "should_truncate", "truncation_target"} {
		if _, exists := info[key]; !exists {
			t.Errorf("Expected %s in truncation info", key)
		}
	}
	if target, ok := info["truncation_target"].(int); !ok || target != 70 {
		t.Errorf("Expected truncation_target 70, got %v", info["truncation_target"])
	}
}

func TestWithEstimatorOverride(t *testing.T) {
	cm := NewContextManager(smallModel(), WithEstimator(func(msg.Message) int { return 50 }))
	cm.AddUserMessage("short")

	if got := cm.CountTokens(); got != 50 {
		t.Errorf("Expected injected estimator to be used, got %d tokens", got)
	}
}
