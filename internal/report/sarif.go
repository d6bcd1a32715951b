package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glueful/vs-code-extension/internal/safefile"
	"github.com/glueful/vs-code-extension/internal/version"
)

// SARIF v2.1.0 types, the minimal subset GitHub Code Scanning needs.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Version        string      `json:"version"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	ShortDescription sarifMessage        `json:"shortDescription,omitempty"`
	DefaultConfig    *sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func WriteSARIF(path string, r ScanReport) error {
	log := buildSARIF(r)
	b, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif report: %w", err)
	}
	if err := safefile.WriteFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write sarif report: %w", err)
	}
	return nil
}

func buildSARIF(r ScanReport) sarifLog {
	ruleIndex := map[string]int{}
	var sarifRules []sarifRule
	var results []sarifResult

	for _, v := range r.Violations {
		if _, seen := ruleIndex[v.Rule]; !seen {
			ruleIndex[v.Rule] = len(sarifRules)
			sarifRules = append(sarifRules, sarifRule{
				ID:               v.Rule,
				ShortDescription: sarifMessage{Text: v.Message},
				DefaultConfig:    &sarifDefaultConfig{Level: mapSeverityToSARIF(string(v.Severity))},
			})
		}

		results = append(results, sarifResult{
			RuleID:  v.Rule,
			Level:   mapSeverityToSARIF(string(v.Severity)),
			Message: sarifMessage{Text: v.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.File},
					Region:           &sarifRegion{StartLine: v.Line, StartColumn: v.Column},
				},
			}},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "glueful-webview-security",
					InformationURI: "https://github.com/glueful/vs-code-extension",
					Version:        version.Version,
					Rules:          sarifRules,
				},
			},
			Results: results,
		}},
	}
}

func mapSeverityToSARIF(sev string) string {
	switch strings.ToLower(strings.TrimSpace(sev)) {
	case "critical", "high":
		return "error"
	case "medium":
		return "warning"
	default:
		return "note"
	}
}
