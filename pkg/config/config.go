// Package config provides model window configuration for the conversation
// manager: context size, reply reservation, and truncation tuning.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Model names with known context window defaults.
const (
	ModelClaudeSonnet = "claude-sonnet-4"
	ModelOpenAIO3     = "o3"
	ModelOpenAIO3Mini = "o3-mini"
)

// Model holds the token window parameters for one model.
//
//nolint:govet // fieldalignment: small config struct, logical grouping preferred
type Model struct {
	Name string `yaml:"name"`
	// MaxContextTokens is the provider's total context window.
	MaxContextTokens int `yaml:"max_context_tokens"`
	// MaxReplyTokens is reserved for the model's reply.
	MaxReplyTokens int `yaml:"max_reply_tokens"`
	// TruncationBuffer is extra headroom subtracted from the budget to
	// absorb estimator error.
	TruncationBuffer int `yaml:"truncation_buffer"`
	// RecentCount protects the trailing N messages from eviction.
	RecentCount int `yaml:"recent_count"`
}

// Config is the on-disk configuration: a set of named models.
type Config struct {
	Models []Model `yaml:"models"`
}

// Defaults returns the built-in window parameters for a model name.
// Unknown models get a conservative 32k window.
func Defaults(name string) Model {
	m := Model{
		Name:             name,
		MaxContextTokens: 32000,
		MaxReplyTokens:   4096,
		TruncationBuffer: 1000,
		RecentCount:      3,
	}
	switch name {
	case ModelClaudeSonnet:
		m.MaxContextTokens = 200000
		m.MaxReplyTokens = 8192
		m.TruncationBuffer = 4000
	case ModelOpenAIO3, ModelOpenAIO3Mini:
		m.MaxContextTokens = 200000
		m.MaxReplyTokens = 30000
		m.TruncationBuffer = 4000
	}
	return m
}

// TruncationTarget returns the token budget the conversation must fit in
// before dispatch: context window minus reply reservation minus buffer.
func (m *Model) TruncationTarget() int {
	return m.MaxContextTokens - m.MaxReplyTokens - m.TruncationBuffer
}

// Validate checks the window parameters for internal consistency.
func (m *Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if m.MaxContextTokens <= 0 {
		return fmt.Errorf("model %s: max_context_tokens must be positive", m.Name)
	}
	if m.MaxReplyTokens <= 0 {
		return fmt.Errorf("model %s: max_reply_tokens must be positive", m.Name)
	}
	if m.MaxReplyTokens+m.TruncationBuffer >= m.MaxContextTokens {
		return fmt.Errorf("model %s: reply tokens plus buffer (%d) must be below the context window (%d)",
			m.Name, m.MaxReplyTokens+m.TruncationBuffer, m.MaxContextTokens)
	}
	if m.RecentCount < 0 {
		return fmt.Errorf("model %s: recent_count cannot be negative", m.Name)
	}
	return nil
}

// Load reads a YAML config file and validates every model entry. Fields
// omitted in the file fall back to the built-in defaults for that model.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for i := range cfg.Models {
		applyDefaults(&cfg.Models[i])
		if err := cfg.Models[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// Lookup returns the named model from the config, or built-in defaults when
// the config does not mention it.
func (c *Config) Lookup(name string) Model {
	for i := range c.Models {
		if c.Models[i].Name == name {
			return c.Models[i]
		}
	}
	return Defaults(name)
}

func applyDefaults(m *Model) {
	def := Defaults(m.Name)
	if m.MaxContextTokens == 0 {
		m.MaxContextTokens = def.MaxContextTokens
	}
	if m.MaxReplyTokens == 0 {
		m.MaxReplyTokens = def.MaxReplyTokens
	}
	if m.TruncationBuffer == 0 {
		m.TruncationBuffer = def.TruncationBuffer
	}
	if m.RecentCount == 0 {
		m.RecentCount = def.RecentCount
	}
}
