package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates the assistant configuration document is missing,
// malformed, or fails schema validation.
var ErrInvalidConfig = errors.New("invalid assistant config")

// AssistantConfig is the once-loaded assistant definition: the system prompt
// template, the model to drive and its sampling temperature, plus the tool
// names the assistant may use.
type AssistantConfig struct {
	SystemMessage string
	Model         string
	Temperature   float32
	Tools         []string
}

const assistantConfigSchema = `{
	"type": "object",
	"required": ["config"],
	"properties": {
		"config": {
			"type": "object",
			"required": ["system_message", "model"],
			"properties": {
				"system_message": {"type": "string", "minLength": 1},
				"model": {"type": "string", "minLength": 1},
				"temperature": {"type": "number", "minimum": 0, "maximum": 2},
				"tools": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

// LoadAssistantConfig reads the assistant definition from a YAML file, or
// from the first YAML file in a directory, validating the document before any
// value is used.
func LoadAssistantConfig(path string) (AssistantConfig, error) {
	file, err := resolveConfigFile(path)
	if err != nil {
		return AssistantConfig{}, err
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return AssistantConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := validateAssistantConfig(v.AllSettings()); err != nil {
		return AssistantConfig{}, err
	}

	cfg := AssistantConfig{
		SystemMessage: v.GetString("config.system_message"),
		Model:         strings.TrimSpace(v.GetString("config.model")),
		Temperature:   float32(v.GetFloat64("config.temperature")),
		Tools:         v.GetStringSlice("config.tools"),
	}

	return cfg, nil
}

func resolveConfigFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: config path is empty", ErrInvalidConfig)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			candidates = append(candidates, filepath.Join(path, entry.Name()))
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no yaml documents in %s", ErrInvalidConfig, path)
	}

	sort.Strings(candidates)
	return candidates[0], nil
}

func validateAssistantConfig(settings map[string]interface{}) error {
	schema, err := jsonschema.CompileString("assistant_config.json", assistantConfigSchema)
	if err != nil {
		return fmt.Errorf("compile assistant config schema: %w", err)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var document interface{}
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
