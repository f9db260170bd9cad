package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsKnownModels(t *testing.T) {
	claude := Defaults(ModelClaudeSonnet)
	assert.Equal(t, 200000, claude.MaxContextTokens)
	assert.Equal(t, 8192, claude.MaxReplyTokens)

	o3 := Defaults(ModelOpenAIO3)
	assert.Equal(t, 30000, o3.MaxReplyTokens)

	unknown := Defaults("some-new-model")
	assert.Equal(t, 32000, unknown.MaxContextTokens)
	assert.Equal(t, 3, unknown.RecentCount)
}

func TestTruncationTarget(t *testing.T) {
	m := Model{MaxContextTokens: 1000, MaxReplyTokens: 200, TruncationBuffer: 100}
	assert.Equal(t, 700, m.TruncationTarget())
}

func TestValidate(t *testing.T) {
	valid := Defaults(ModelClaudeSonnet)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Model)
	}{
		{"empty name", func(m *Model) { m.Name = "" }},
		{"zero context", func(m *Model) { m.MaxContextTokens = 0 }},
		{"zero reply", func(m *Model) { m.MaxReplyTokens = 0 }},
		{"reply plus buffer exceeds window", func(m *Model) { m.MaxReplyTokens = m.MaxContextTokens }},
		{"negative recent count", func(m *Model) { m.RecentCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Defaults(ModelClaudeSonnet)
			tt.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	content := `
models:
  - name: claude-sonnet-4
    max_context_tokens: 180000
  - name: tiny-local
    max_context_tokens: 8000
    max_reply_tokens: 1000
    truncation_buffer: 500
    recent_count: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Models, 2)

	// Explicit value kept, omitted fields filled from defaults.
	claude := cfg.Lookup(ModelClaudeSonnet)
	assert.Equal(t, 180000, claude.MaxContextTokens)
	assert.Equal(t, 8192, claude.MaxReplyTokens)

	tiny := cfg.Lookup("tiny-local")
	assert.Equal(t, 8000, tiny.MaxContextTokens)
	assert.Equal(t, 2, tiny.RecentCount)

	// Models absent from the file fall back to built-in defaults.
	other := cfg.Lookup("some-new-model")
	assert.Equal(t, 32000, other.MaxContextTokens)
}

func TestLoadRejectsInvalidModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	content := `
models:
  - name: broken
    max_context_tokens: 100
    max_reply_tokens: 400
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
