package domain

import (
	"fmt"
	"strings"
)

// HeaderMode selects how copier headers are handled on fixed targets.
type HeaderMode string

const (
	HeaderAuto   HeaderMode = "auto"
	HeaderAlways HeaderMode = "always"
	HeaderNever  HeaderMode = "never"
)

// ValidHeaderModes enumerates all recognized header modes.
var ValidHeaderModes = []HeaderMode{HeaderAuto, HeaderAlways, HeaderNever}

// ValidLogLevels enumerates the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// HeaderConfig controls copier-header stripping.
type HeaderConfig struct {
	Mode       HeaderMode `yaml:"mode"       json:"mode"`
	Extensions []string   `yaml:"extensions" json:"extensions,omitempty"`
	Size       int        `yaml:"size"       json:"size"`
}

// Config holds project-level configuration loaded from .patchkraft.yaml.
type Config struct {
	AutoMatch        bool         `yaml:"auto_match"        json:"auto_match"`
	LogLevel         string       `yaml:"log_level"         json:"log_level"`
	AssociationsPath string       `yaml:"associations_path" json:"associations_path,omitempty"`
	SearchDirs       []string     `yaml:"search_dirs"       json:"search_dirs,omitempty"`
	Header           HeaderConfig `yaml:"header"            json:"header"`
	History          bool         `yaml:"history"           json:"history"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		AutoMatch: true,
		LogLevel:  "warn",
		Header: HeaderConfig{
			Mode:       HeaderAuto,
			Extensions: []string{".smc", ".sfc"},
			Size:       512,
		},
		History: true,
	}
}

// Validate checks the configuration for unknown or out-of-range values.
func (c Config) Validate() error {
	var errs []string

	if !containsString(ValidLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: %s)",
			c.LogLevel, strings.Join(ValidLogLevels, ", ")))
	}

	validMode := false
	for _, m := range ValidHeaderModes {
		if c.Header.Mode == m {
			validMode = true
			break
		}
	}
	if !validMode {
		errs = append(errs, fmt.Sprintf("unknown header.mode %q", c.Header.Mode))
	}

	if c.Header.Size <= 0 || c.Header.Size >= 1024 {
		errs = append(errs, fmt.Sprintf("header.size %d must be between 1 and 1023", c.Header.Size))
	}

	for _, ext := range c.Header.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("header extension %q must start with a dot", ext))
		}
	}

	for _, dir := range c.SearchDirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, "search_dirs contains an empty entry")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation: %s", strings.Join(errs, "; "))
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
