package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/interfaces"
	"golang.org/x/time/rate"
)

// rateLimitedGenerator throttles Generate calls to a per-minute budget,
// blocking until a token is available or the context is done. Initialize
// and Cleanup pass through untouched.
type rateLimitedGenerator struct {
	inner   interfaces.Generator
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// withRateLimit wraps a generator with a requests-per-minute limit.
// Zero or negative means unlimited and returns the generator unchanged.
func withRateLimit(inner interfaces.Generator, requestsPerMin int, logger arbor.ILogger) interfaces.Generator {
	if requestsPerMin <= 0 {
		return inner
	}
	return &rateLimitedGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), requestsPerMin),
		logger:  logger,
	}
}

func (g *rateLimitedGenerator) Initialize(ctx context.Context) error {
	return g.inner.Initialize(ctx)
}

func (g *rateLimitedGenerator) Generate(ctx context.Context, prompt string, reqContext map[string]interface{}) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return g.inner.Generate(ctx, prompt, reqContext)
}

func (g *rateLimitedGenerator) Mode() interfaces.GeneratorMode {
	return g.inner.Mode()
}

func (g *rateLimitedGenerator) Cleanup() error {
	return g.inner.Cleanup()
}

var _ interfaces.Generator = (*rateLimitedGenerator)(nil)
