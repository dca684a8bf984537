package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a scenario from a YAML or JSON file, chosen by extension.
// Fields absent from the file keep their Default() values, so a file may
// override only what it cares about. The result is normalized but not
// validated; callers decide when to Validate.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scenario file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse scenario yaml %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse scenario json %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("scenario file %s: unsupported extension (want .yaml, .yml or .json)", path)
	}

	cfg.Normalize()
	return cfg, nil
}

// FromJSON decodes a scenario from raw JSON over the defaults, the same way
// LoadFile treats files. Used by the API layer for request bodies.
func FromJSON(data []byte) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scenario: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}
