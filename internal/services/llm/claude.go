package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
)

// ClaudeGenerator produces agent responses through the Anthropic API.
type ClaudeGenerator struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	timeout time.Duration

	mu          sync.Mutex
	client      anthropic.Client
	initialized bool
}

// NewClaudeGenerator creates an uninitialized Claude generator. The API key
// is validated during Initialize, not here, so construction is cheap.
func NewClaudeGenerator(config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeGenerator {
	return &ClaudeGenerator{
		config:  config,
		logger:  logger,
		timeout: common.MustDuration(config.Timeout, 60*time.Second),
	}
}

// Initialize validates configuration and creates the API client.
func (g *ClaudeGenerator) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.initialized {
		return nil
	}

	if g.config.APIKey == "" {
		return fmt.Errorf("Anthropic API key is required (set via CONCORD_CLAUDE_API_KEY, ANTHROPIC_API_KEY, or llm.claude.api_key in config)")
	}
	if g.config.Model == "" {
		g.config.Model = "claude-sonnet-4-20250514"
	}

	g.client = anthropic.NewClient(
		option.WithAPIKey(g.config.APIKey),
	)
	g.initialized = true

	g.logger.Debug().
		Str("model", g.config.Model).
		Dur("timeout", g.timeout).
		Msg("Claude generator initialized")
	return nil
}

// Generate produces one completion for the prompt.
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	if !g.initialized {
		g.mu.Unlock()
		return "", fmt.Errorf("Claude generator is not initialized")
	}
	client := g.client
	g.mu.Unlock()

	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	maxTokens := g.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if g.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.config.Temperature))
	}

	resp, err := client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}
	return response.String(), nil
}

// Mode reports that this generator calls a cloud API.
func (g *ClaudeGenerator) Mode() interfaces.GeneratorMode {
	return interfaces.GeneratorModeCloud
}

// Cleanup drops the client. The Anthropic client holds no connections that
// need explicit shutdown.
func (g *ClaudeGenerator) Cleanup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = false
	return nil
}

// Ensure ClaudeGenerator implements the Generator interface
var _ interfaces.Generator = (*ClaudeGenerator)(nil)
