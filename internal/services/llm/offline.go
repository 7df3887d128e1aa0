package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/interfaces"
)

// OfflineGenerator produces deterministic canned responses without network
// access. The verdict is derived from a hash of the prompt, so the same
// scenario always debates the same way. Used for development and as the
// default mode when no API keys are configured.
type OfflineGenerator struct {
	logger arbor.ILogger

	mu          sync.Mutex
	initialized bool
}

// NewOfflineGenerator creates an uninitialized offline generator.
func NewOfflineGenerator(logger arbor.ILogger) *OfflineGenerator {
	return &OfflineGenerator{logger: logger}
}

// Initialize marks the generator ready. Nothing is loaded.
func (g *OfflineGenerator) Initialize(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = true
	return nil
}

// Generate returns a canned reply shaped for the stage embedded in the
// prompt. Honors context cancellation for parity with cloud generators.
func (g *OfflineGenerator) Generate(ctx context.Context, prompt string, _ map[string]interface{}) (string, error) {
	g.mu.Lock()
	initialized := g.initialized
	g.mu.Unlock()

	if !initialized {
		return "", fmt.Errorf("offline generator is not initialized")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	answer := deterministicAnswer(prompt)

	switch {
	case strings.Contains(prompt, "Final answer:"):
		return answer, nil
	case strings.Contains(prompt, "Feedback:"):
		return "I see the other participant's point, but from my cultural standpoint the weight given to community expectations differs. The reasoning holds within their framework, though I would stress different values.", nil
	default:
		return answer + ". From the standpoint of my cultural values this behavior carries a clear social meaning. The judgment rests on how the community would receive it.", nil
	}
}

// Mode reports that this generator runs without network access.
func (g *OfflineGenerator) Mode() interfaces.GeneratorMode {
	return interfaces.GeneratorModeOffline
}

// Cleanup resets the generator. Idempotent.
func (g *OfflineGenerator) Cleanup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = false
	return nil
}

// deterministicAnswer hashes the prompt onto the verdict tokens.
func deterministicAnswer(prompt string) string {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	switch h.Sum32() % 3 {
	case 0:
		return "Yes"
	case 1:
		return "No"
	default:
		return "Neither"
	}
}

// Ensure OfflineGenerator implements the Generator interface
var _ interfaces.Generator = (*OfflineGenerator)(nil)
