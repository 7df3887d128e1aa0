// Package llm provides the text generators backing the cultural agents:
// cloud providers (Claude, Gemini) and a deterministic offline generator.
// Generators are resource-heavy by contract; the agent pool bounds how
// many are initialized at once.
package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
)

// NewGenerator creates a generator for the configured mode and provider.
// Cloud generators are wrapped with the configured per-minute rate limit.
func NewGenerator(cfg *common.LLMConfig, logger arbor.ILogger) (interfaces.Generator, error) {
	switch cfg.Mode {
	case "offline":
		return NewOfflineGenerator(logger), nil

	case "cloud":
		var gen interfaces.Generator
		switch cfg.Provider {
		case "claude":
			gen = NewClaudeGenerator(&cfg.Claude, logger)
		case "gemini":
			gen = NewGeminiGenerator(&cfg.Gemini, logger)
		default:
			return nil, fmt.Errorf("unsupported LLM provider %q: must be 'claude' or 'gemini'", cfg.Provider)
		}
		return withRateLimit(gen, cfg.RequestsPerMin, logger), nil

	default:
		return nil, fmt.Errorf("invalid LLM mode %q: must be 'offline' or 'cloud'", cfg.Mode)
	}
}
