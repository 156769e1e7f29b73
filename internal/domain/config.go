package domain

// Config mirrors ~/.cortex/config.yaml.
type Config struct {
	ConfigFormatVersion string           `yaml:"config_format_version"`
	AI                  AISettings       `yaml:"ai"`
	Security            SecuritySettings `yaml:"security"`
	Audit               AuditSettings    `yaml:"audit"`
	Language            LanguageSettings `yaml:"language"`
	Shell               ShellSettings    `yaml:"shell"`
}

// AISettings controls backend selection and context construction.
type AISettings struct {
	Backend         string `yaml:"backend"`
	Model           string `yaml:"model"`
	MaxContextBytes int    `yaml:"max_context_bytes"`
	FollowUpDepth   int    `yaml:"follow_up_depth"`
	OllamaProbe     bool   `yaml:"ollama_probe"`
	// SystemContext adds the working directory, OS and installed tools to
	// every query.
	SystemContext bool `yaml:"system_context"`
}

// SecuritySettings defines risk gating behavior.
type SecuritySettings struct {
	RulesFile string    `yaml:"rules_file"`
	Threshold RiskLevel `yaml:"threshold"`
	Sandbox   bool      `yaml:"sandbox"`
}

// AuditSettings configures the audit trail.
type AuditSettings struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	MirrorSQLite bool   `yaml:"mirror_sqlite"`
	SQLitePath   string `yaml:"sqlite_path"`
}

// LanguageSettings seeds the reply language and the Arabic-script mapping.
type LanguageSettings struct {
	Preference   string `yaml:"preference"`
	ArabicScript string `yaml:"arabic_script"`
}

// ShellSettings controls the interactive loop.
type ShellSettings struct {
	Prompt      string `yaml:"prompt"`
	HistorySize int    `yaml:"history_size"`
}
