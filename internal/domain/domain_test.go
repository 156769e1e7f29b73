package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
		ok    bool
	}{
		{"none", RiskNone, true},
		{"Low", RiskLow, true},
		{" MEDIUM ", RiskMedium, true},
		{"high", RiskHigh, true},
		{"critical", RiskCritical, true},
		{"severe", RiskNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseRiskLevel(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
	assert.True(t, RiskLow < RiskMedium && RiskHigh < RiskCritical)
}

func TestRiskLevelYAML(t *testing.T) {
	var settings SecuritySettings
	assert.NoError(t, yaml.Unmarshal([]byte("threshold: medium\n"), &settings))
	assert.Equal(t, RiskMedium, settings.Threshold)

	data, err := yaml.Marshal(SecuritySettings{Threshold: RiskCritical})
	assert.NoError(t, err)
	assert.Contains(t, string(data), "threshold: critical")

	assert.Error(t, yaml.Unmarshal([]byte("threshold: extreme\n"), &settings))
}

func TestParseAuditKind(t *testing.T) {
	for _, kind := range AuditKinds() {
		got, ok := ParseAuditKind(kind.String())
		assert.True(t, ok, kind.String())
		assert.Equal(t, kind, got)
	}
	got, ok := ParseAuditKind("error")
	assert.True(t, ok)
	assert.Equal(t, AuditError, got)

	_, ok = ParseAuditKind("AI_THOUGHT")
	assert.False(t, ok)
	assert.Equal(t, "UNKNOWN", AuditKind(99).String())
}

func TestProviderIDs(t *testing.T) {
	assert.Equal(t, []ProviderID{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderDeepSeek, ProviderOllama}, AllProviders())

	id, ok := ParseProviderID(" Claude ")
	assert.True(t, ok)
	assert.Equal(t, ProviderClaude, id)

	id, ok = ParseProviderID("skynet")
	assert.False(t, ok)
	assert.False(t, id.Valid())
	assert.Equal(t, "unknown", id.String())
}

func TestCapability(t *testing.T) {
	caps := CapCode | CapShell
	assert.True(t, caps.Has(CapCode))
	assert.True(t, caps.Has(CapCode|CapShell))
	assert.False(t, caps.Has(CapCode|CapFast))
	assert.False(t, caps.Has(0))
	assert.Equal(t, "code|shell", caps.String())
	assert.Equal(t, "none", Capability(0).String())
}

func TestQueryResults(t *testing.T) {
	ok := QuerySuccess("COMMAND: ls")
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Err)

	failed := QueryFailure("  ")
	assert.False(t, failed.Success)
	assert.Equal(t, "unknown error", failed.Err)
	assert.Empty(t, failed.Text)
}

func TestDirectiveKinds(t *testing.T) {
	var prefixes []string
	for _, kind := range DirectiveKinds() {
		prefixes = append(prefixes, kind.Prefix())
	}
	assert.Equal(t, []string{"COMMAND:", "EXPLAIN:", "SCAN:", "VULN:", "CTF:"}, prefixes)
	assert.Equal(t, "VULN", DirectiveVuln.String())
}

func TestParseLanguage(t *testing.T) {
	lang, ok := ParseLanguage("urdu")
	assert.True(t, ok)
	assert.Equal(t, LangUrdu, lang)

	lang, ok = ParseLanguage("COMMAND")
	assert.True(t, ok)
	assert.Equal(t, LangCommand, lang)

	_, ok = ParseLanguage("klingon")
	assert.False(t, ok)
}

func TestHealthReportFailed(t *testing.T) {
	report := HealthReport{Checks: []HealthCheck{{Name: "a", Status: HealthOK}, {Name: "b", Status: HealthWarn}}}
	assert.False(t, report.Failed())
	report.Checks = append(report.Checks, HealthCheck{Name: "c", Status: HealthError})
	assert.True(t, report.Failed())
}

func TestGateOutcomeString(t *testing.T) {
	assert.Equal(t, "declined", OutcomeDeclined.String())
	assert.Equal(t, "unknown", GateOutcome(42).String())
}
