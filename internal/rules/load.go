package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const ruleFileSuffix = ".rule.yaml"

type ruleFile struct {
	APIVersion string `yaml:"api_version"`
	Rules      []Rule `yaml:"rules"`
}

// LoadDir reads custom rule files (*.rule.yaml) from a directory.
// A missing directory yields no rules. Individual files that fail to
// parse or validate are reported as warnings and skipped; they must not
// take down the builtin catalogue.
func LoadDir(dir string) ([]Rule, []string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read rules dir %s: %w", dir, err)
	}

	var out []Rule
	var warnings []string
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ruleFileSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		loaded, err := loadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", path, err))
			continue
		}
		out = append(out, loaded...)
	}
	return out, warnings, nil
}

func loadFile(path string) ([]Rule, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("refusing symlinked rule file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if rf.APIVersion != "" && rf.APIVersion != APIVersion {
		return nil, fmt.Errorf("unsupported api_version %q (want %s)", rf.APIVersion, APIVersion)
	}
	for _, r := range rf.Rules {
		if err := Validate(r); err != nil {
			return nil, err
		}
	}
	return rf.Rules, nil
}

// Resolve combines the builtin catalogue with custom rules from dir
// (unless disabled) and validates name uniqueness across the set.
func Resolve(dir string, noCustom bool) ([]Rule, []string, error) {
	ruleSet := Builtins()
	var warnings []string
	if !noCustom {
		custom, w, err := LoadDir(dir)
		if err != nil {
			return nil, nil, err
		}
		warnings = w
		ruleSet = append(ruleSet, custom...)
	}
	if err := ValidateUniqueNames(ruleSet); err != nil {
		return nil, warnings, err
	}
	return ruleSet, warnings, nil
}
