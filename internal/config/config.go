package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the common scan/enforce flag names. Zero values mean
// "not set"; flags always win over file values.
type Config struct {
	RulesDir      string `yaml:"rules_dir,omitempty"`
	NoCustomRules *bool  `yaml:"no_custom_rules,omitempty"`
	MaxFiles      *int   `yaml:"max_files,omitempty"`
	MaxFileBytes  *int64 `yaml:"max_file_bytes,omitempty"`
	ContextWindow *int   `yaml:"context_window,omitempty"`
	Strict        *bool  `yaml:"strict,omitempty"`
	Out           string `yaml:"out,omitempty"`
}

// Load reads config from layered sources:
//  1. ~/.glueful/scanner.yaml (global)
//  2. ./.glueful/scanner.yaml (repo-local, takes precedence)
//
// Missing files are silently ignored. Returns zero Config if neither
// exists.
func Load() (Config, error) {
	home, _ := os.UserHomeDir()
	var globalPath, localPath string
	if home != "" {
		globalPath = filepath.Join(home, ".glueful", "scanner.yaml")
	}
	cwd, _ := os.Getwd()
	if cwd != "" {
		localPath = filepath.Join(cwd, ".glueful", "scanner.yaml")
	}

	var merged Config
	if globalPath != "" {
		global, err := loadFile(globalPath)
		if err != nil {
			return Config{}, fmt.Errorf("load global config %s: %w", globalPath, err)
		}
		merged = merge(merged, global)
	}
	if localPath != "" {
		local, err := loadFile(localPath)
		if err != nil {
			return Config{}, fmt.Errorf("load local config %s: %w", localPath, err)
		}
		merged = merge(merged, local)
	}
	return merged, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return Config{}, nil
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// merge applies overrides from b onto a. Non-zero fields in b win.
func merge(a, b Config) Config {
	if b.RulesDir != "" {
		a.RulesDir = b.RulesDir
	}
	if b.NoCustomRules != nil {
		a.NoCustomRules = b.NoCustomRules
	}
	if b.MaxFiles != nil {
		a.MaxFiles = b.MaxFiles
	}
	if b.MaxFileBytes != nil {
		a.MaxFileBytes = b.MaxFileBytes
	}
	if b.ContextWindow != nil {
		a.ContextWindow = b.ContextWindow
	}
	if b.Strict != nil {
		a.Strict = b.Strict
	}
	if b.Out != "" {
		a.Out = b.Out
	}
	return a
}
