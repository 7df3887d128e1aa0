package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/common"
	"github.com/ternarybob/concord/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiGenerator produces agent responses through the Google Gemini API.
type GeminiGenerator struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiGenerator creates an uninitialized Gemini generator.
func NewGeminiGenerator(config *common.GeminiConfig, logger arbor.ILogger) *GeminiGenerator {
	return &GeminiGenerator{
		config:  config,
		logger:  logger,
		timeout: common.MustDuration(config.Timeout, 60*time.Second),
	}
}

// Initialize validates configuration and creates the genai client.
func (g *GeminiGenerator) Initialize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return nil
	}

	if g.config.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set via CONCORD_GEMINI_API_KEY, GEMINI_API_KEY, or llm.gemini.api_key in config)")
	}
	if g.config.Model == "" {
		g.config.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize genai client: %w", err)
	}
	g.client = client

	g.logger.Debug().
		Str("model", g.config.Model).
		Dur("timeout", g.timeout).
		Msg("Gemini generator initialized")
	return nil
}

// Generate produces one completion for the prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	client := g.client
	g.mu.Unlock()

	if client == nil {
		return "", fmt.Errorf("Gemini generator is not initialized")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if g.config.Temperature > 0 {
		config.Temperature = genai.Ptr(g.config.Temperature)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(timeoutCtx, g.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}
	return response.String(), nil
}

// Mode reports that this generator calls a cloud API.
func (g *GeminiGenerator) Mode() interfaces.GeneratorMode {
	return interfaces.GeneratorModeCloud
}

// Cleanup drops the client reference; genai.Client needs no explicit Close.
func (g *GeminiGenerator) Cleanup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.client = nil
	return nil
}

// Ensure GeminiGenerator implements the Generator interface
var _ interfaces.Generator = (*GeminiGenerator)(nil)
