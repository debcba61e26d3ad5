package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/patchkraft/patchkraft/internal/domain"
)

// FileName is the project configuration file.
const FileName = ".patchkraft.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .patchkraft.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .patchkraft.yaml from dir. Keys missing from the file keep their
// defaults, and DefaultConfig is returned if the file does not exist.
// Relative paths are resolved against dir.
func (l *YAMLLoader) Load(dir string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return domain.Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	if cfg.AssociationsPath != "" && !filepath.IsAbs(cfg.AssociationsPath) {
		cfg.AssociationsPath = filepath.Join(dir, cfg.AssociationsPath)
	}
	for i, d := range cfg.SearchDirs {
		if !filepath.IsAbs(d) {
			cfg.SearchDirs[i] = filepath.Join(dir, d)
		}
	}
	return cfg, nil
}

// Template is the annotated configuration written by `patchkraft init`.
const Template = `# patchkraft project configuration

# Find targets for patches that identify them (BPS) without asking.
auto_match: true

# debug, info, warn or error
log_level: warn

# Where patch-to-target associations are remembered.
# Defaults to the user config directory.
# associations_path: .patchkraft/associations.json

# Extra directories scanned for targets, relative to this file.
search_dirs: []

header:
  # auto, always or never
  mode: auto
  extensions: [.smc, .sfc]
  size: 512

# Keep a log of finished batches in .patchkraft/history.json
history: true
`
