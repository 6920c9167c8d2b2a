package ai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validAssistantYAML = `config:
  model: gpt-4o-mini
  temperature: 0.7
  tools:
    - scoring
  system_message: "Gere o feedback para {nome_colaborador}"
`

func TestLoadAssistantConfig(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "assistant.yaml", validAssistantYAML)

	cfg, err := LoadAssistantConfig(path)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", cfg.Model)
	require.InDelta(t, 0.7, float64(cfg.Temperature), 0.0001)
	require.Equal(t, []string{"scoring"}, cfg.Tools)
	require.Equal(t, "Gere o feedback para {nome_colaborador}", cfg.SystemMessage)
}

func TestLoadAssistantConfigFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "b-assistant.yaml", validAssistantYAML)
	writeConfigFile(t, dir, "a-assistant.yaml", `config:
  model: gemini-2.0-flash
  system_message: "Outro prompt"
`)
	writeConfigFile(t, dir, "notes.txt", "ignored")

	// The first yaml document in lexical order wins.
	cfg, err := LoadAssistantConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "gemini-2.0-flash", cfg.Model)
}

func TestLoadAssistantConfigMissingModel(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "assistant.yaml", `config:
  system_message: "Prompt sem modelo"
`)

	_, err := LoadAssistantConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAssistantConfigTemperatureOutOfRange(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "assistant.yaml", `config:
  model: gpt-4o-mini
  temperature: 3.5
  system_message: "Prompt"
`)

	_, err := LoadAssistantConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAssistantConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "assistant.yaml", "config: [unclosed")

	_, err := LoadAssistantConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAssistantConfigMissingPath(t *testing.T) {
	_, err := LoadAssistantConfig("")
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadAssistantConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAssistantConfigEmptyDirectory(t *testing.T) {
	_, err := LoadAssistantConfig(t.TempDir())
	require.ErrorIs(t, err, ErrInvalidConfig)
}
