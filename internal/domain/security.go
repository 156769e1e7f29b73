package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is totally ordered: none < low < medium < high < critical.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the display name used in confirmations.
func (l RiskLevel) String() string {
	switch l {
	case RiskNone:
		return "None"
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// ParseRiskLevel accepts none, low, medium, high and critical in any case.
func ParseRiskLevel(value string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return RiskNone, true
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	case "critical":
		return RiskCritical, true
	default:
		return RiskNone, false
	}
}

// MarshalYAML writes the lower-case level name.
func (l RiskLevel) MarshalYAML() (interface{}, error) {
	return strings.ToLower(l.String()), nil
}

// UnmarshalYAML reads a level name.
func (l *RiskLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	level, ok := ParseRiskLevel(raw)
	if !ok {
		return fmt.Errorf("invalid risk level %q", raw)
	}
	*l = level
	return nil
}

// RiskAnalysis aggregates the outcome of scoring one command.
type RiskAnalysis struct {
	Level                RiskLevel
	Reason               string
	Matched              []string
	Blocked              bool
	RequiresConfirmation bool
	Suggestion           string
}
