// Package config loads ~/.cortex/config.yaml and applies environment
// overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/infrastructure/audit"
	"github.com/doeshing/cortex-shell/internal/pkg/filesystem"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Environment variables recognised by the loader.
const (
	EnvConfig         = "CORTEX_CONFIG"
	EnvRiskThreshold  = "CORTEX_RISK_THRESHOLD"
	EnvSandbox        = "CORTEX_SANDBOX"
	EnvAuditDisabled  = "CORTEX_AUDIT_DISABLED"
	EnvAuditLog       = "CORTEX_AUDIT_LOG"
	EnvLanguage       = "CORTEX_LANG"
	currentFormatVers = "1"
)

// FileLoader loads YAML configuration from ~/.cortex/config.yaml (overridable via CORTEX_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader reading the process environment.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// NewFileLoaderWithEnv builds a loader with a custom environment lookup.
func NewFileLoaderWithEnv(path string, getenv func(string) string) *FileLoader {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &FileLoader{overridePath: path, getenv: getenv}
}

// Load implements ports.ConfigProvider. A missing file is created with the
// defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := writeDefault(path, cfg); err != nil {
			return domain.Config{}, err
		}
	case err != nil:
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg = hydrateDefaults(cfg)
	if err := l.applyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := strings.TrimSpace(l.getenv(EnvConfig)); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".cortex", "config.yaml")
}

// Save writes cfg to the config path.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return writeDefault(path, cfg)
}

func (l *FileLoader) applyEnv(cfg *domain.Config) error {
	if raw := strings.TrimSpace(l.getenv(EnvRiskThreshold)); raw != "" {
		level, ok := domain.ParseRiskLevel(raw)
		if !ok {
			return fmt.Errorf("invalid %s %q", EnvRiskThreshold, raw)
		}
		cfg.Security.Threshold = level
	}
	if l.getenv(EnvSandbox) == "1" {
		cfg.Security.Sandbox = true
	}
	if l.getenv(EnvAuditDisabled) == "1" {
		cfg.Audit.Enabled = false
	}
	if path := strings.TrimSpace(l.getenv(EnvAuditLog)); path != "" {
		cfg.Audit.Path = filesystem.ExpandHome(path)
	}
	if lang := strings.TrimSpace(l.getenv(EnvLanguage)); lang != "" {
		cfg.Language.Preference = lang
	}
	return nil
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() domain.Config {
	home := filesystem.UserHomeDir()
	return domain.Config{
		ConfigFormatVersion: currentFormatVers,
		AI: domain.AISettings{
			MaxContextBytes: domain.DefaultMaxContextBytes,
			FollowUpDepth:   domain.DefaultFollowUpDepth,
			OllamaProbe:     true,
			SystemContext:   true,
		},
		Security: domain.SecuritySettings{
			RulesFile: filepath.Join(home, ".cortex", "risk_rules.yaml"),
			Threshold: domain.RiskHigh,
		},
		Audit: domain.AuditSettings{
			Enabled:    true,
			Path:       audit.DefaultPath(os.Getenv("HOME")),
			SQLitePath: filepath.Join(home, ".cortex", "audit.db"),
		},
		Language: domain.LanguageSettings{
			Preference:   "english",
			ArabicScript: "urdu",
		},
		Shell: domain.ShellSettings{
			Prompt:      domain.DefaultShellPrompt,
			HistorySize: domain.DefaultHistorySize,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	defaults := DefaultConfig()
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = defaults.ConfigFormatVersion
	}
	if cfg.AI.MaxContextBytes <= 0 {
		cfg.AI.MaxContextBytes = defaults.AI.MaxContextBytes
	}
	if cfg.AI.FollowUpDepth < 0 {
		cfg.AI.FollowUpDepth = 0
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = defaults.Security.RulesFile
	}
	cfg.Security.RulesFile = filesystem.ExpandHome(cfg.Security.RulesFile)
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = defaults.Audit.Path
	}
	cfg.Audit.Path = filesystem.ExpandHome(cfg.Audit.Path)
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = defaults.Audit.SQLitePath
	}
	cfg.Audit.SQLitePath = filesystem.ExpandHome(cfg.Audit.SQLitePath)
	if cfg.Language.Preference == "" {
		cfg.Language.Preference = defaults.Language.Preference
	}
	if cfg.Language.ArabicScript == "" {
		cfg.Language.ArabicScript = defaults.Language.ArabicScript
	}
	if cfg.Shell.Prompt == "" {
		cfg.Shell.Prompt = defaults.Shell.Prompt
	}
	if cfg.Shell.HistorySize <= 0 {
		cfg.Shell.HistorySize = defaults.Shell.HistorySize
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
