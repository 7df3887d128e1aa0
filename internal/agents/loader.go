package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/concord/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadPersonas returns the built-in persona set merged with any YAML
// overrides found in dir. An empty dir returns the built-ins unchanged;
// a missing directory is not an error. Files must carry a valid `type`
// field naming a cultural kind.
func LoadPersonas(dir string, logger arbor.ILogger) (map[models.AgentType]*models.Persona, error) {
	personas := BuiltinPersonas()

	if dir == "" {
		return personas, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().
				Str("dir", dir).
				Msg("Personas directory not found, using built-in personas")
			return personas, nil
		}
		return nil, fmt.Errorf("failed to read personas directory %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read persona file %s: %w", path, err)
		}

		var persona models.Persona
		if err := yaml.Unmarshal(data, &persona); err != nil {
			return nil, fmt.Errorf("failed to parse persona file %s: %w", path, err)
		}

		if !persona.Type.IsValid() {
			return nil, fmt.Errorf("persona file %s: unknown agent type %q", path, persona.Type)
		}

		personas[persona.Type] = &persona
		loaded++

		logger.Debug().
			Str("file", name).
			Str("agent_type", persona.Type.String()).
			Msg("Loaded persona override")
	}

	if loaded > 0 {
		logger.Info().
			Int("count", loaded).
			Str("dir", dir).
			Msg("Persona overrides loaded")
	}

	return personas, nil
}
