package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from refit.yml.
type ProjectConfig struct {
	// Rules lists enabled rule names in precedence order.
	// Empty means every built-in rule.
	Rules []string `yaml:"rules,omitempty"`

	IncludeExts []string `yaml:"includeExts,omitempty"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`

	// HistoryDB is the path of the run-history database. Empty disables
	// history recording.
	HistoryDB string `yaml:"historyDB,omitempty"`

	// TreatWarningsAsErrors makes warning diagnostics fail check runs.
	TreatWarningsAsErrors bool `yaml:"treatWarningsAsErrors,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Load attempts to read refit.yml or refit.yaml from the given directory.
// Returns a zero-value config (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"refit.yml", "refit.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
