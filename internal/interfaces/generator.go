package interfaces

import "context"

// GeneratorMode represents the operational mode of a text generator
type GeneratorMode string

const (
	// GeneratorModeCloud indicates the generator calls a cloud LLM API
	GeneratorModeCloud GeneratorMode = "cloud"

	// GeneratorModeOffline indicates the generator runs without network access
	GeneratorModeOffline GeneratorMode = "offline"
)

// Generator is the opaque text-generation capability an agent wraps.
// Implementations are resource-heavy: the pool bounds how many initialized
// generators are resident at once.
type Generator interface {
	// Initialize loads the underlying model or verifies connectivity.
	// A failed Initialize leaves the instance discardable; there is no
	// retry contract.
	Initialize(ctx context.Context) error

	// Generate produces a text reply for the prompt. Calling Generate
	// before a successful Initialize is an error.
	Generate(ctx context.Context, prompt string, context map[string]interface{}) (string, error)

	// Mode returns the operational mode of the generator.
	Mode() GeneratorMode

	// Cleanup releases the generator's resources. Idempotent.
	Cleanup() error
}
