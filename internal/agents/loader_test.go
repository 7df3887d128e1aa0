package agents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/models"
)

func TestLoadPersonasBuiltins(t *testing.T) {
	personas, err := LoadPersonas("", arbor.NewLogger())
	require.NoError(t, err)

	require.Len(t, personas, len(models.CulturalAgentTypes()))
	for _, agentType := range models.CulturalAgentTypes() {
		p := personas[agentType]
		require.NotNil(t, p, "missing persona for %s", agentType)
		assert.NotEmpty(t, p.Context)
		assert.NotEmpty(t, p.CulturalValues)
	}
}

func TestLoadPersonasMissingDirUsesBuiltins(t *testing.T) {
	personas, err := LoadPersonas(filepath.Join(t.TempDir(), "absent"), arbor.NewLogger())
	require.NoError(t, err)
	assert.Len(t, personas, len(models.CulturalAgentTypes()))
}

func TestLoadPersonasYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	override := `type: cultural_buddhist
name: Buddhist
context: Overridden context for testing.
cultural_values:
  - compassion
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buddhist.yaml"), []byte(override), 0644))

	personas, err := LoadPersonas(dir, arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, "Overridden context for testing.", personas[models.AgentTypeBuddhist].Context)
	// Other personas keep their built-in records.
	assert.NotEqual(t, "Overridden context for testing.", personas[models.AgentTypeChristian].Context)
}

func TestLoadPersonasRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	bad := "type: cultural_martian\nname: Martian\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "martian.yaml"), []byte(bad), 0644))

	_, err := LoadPersonas(dir, arbor.NewLogger())
	assert.Error(t, err)
}
