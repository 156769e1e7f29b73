// Package config validates a loaded configuration before the shell uses it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if cfg.ConfigFormatVersion == "" {
		return errors.New("config_format_version must be set")
	}
	if err := validateAI(cfg.AI); err != nil {
		return err
	}
	if err := validateSecurity(cfg.Security); err != nil {
		return err
	}
	if err := validateAudit(cfg.Audit); err != nil {
		return err
	}
	if err := validateLanguage(cfg.Language); err != nil {
		return err
	}
	if cfg.Shell.HistorySize <= 0 {
		return fmt.Errorf("shell.history_size must be > 0")
	}
	return nil
}

func validateAI(ai domain.AISettings) error {
	if ai.Backend != "" {
		if _, ok := domain.ParseProviderID(ai.Backend); !ok {
			return fmt.Errorf("ai.backend must be one of %s, got %s", providerNames(), ai.Backend)
		}
	}
	if ai.Model != "" && ai.Backend == "" {
		return errors.New("ai.model requires ai.backend")
	}
	if ai.MaxContextBytes <= 0 {
		return fmt.Errorf("ai.max_context_bytes must be > 0")
	}
	if ai.FollowUpDepth < 0 {
		return fmt.Errorf("ai.follow_up_depth must be >= 0")
	}
	return nil
}

func validateSecurity(sec domain.SecuritySettings) error {
	if sec.RulesFile == "" {
		return fmt.Errorf("security.rules_file must be set")
	}
	if sec.Threshold < domain.RiskLow || sec.Threshold > domain.RiskCritical {
		return fmt.Errorf("security.threshold must be low|medium|high|critical, got %s", strings.ToLower(sec.Threshold.String()))
	}
	return nil
}

func validateAudit(audit domain.AuditSettings) error {
	if audit.Enabled && audit.Path == "" {
		return fmt.Errorf("audit.path must be set when audit is enabled")
	}
	if audit.MirrorSQLite && audit.SQLitePath == "" {
		return fmt.Errorf("audit.sqlite_path must be set when audit.mirror_sqlite is true")
	}
	return nil
}

func validateLanguage(lang domain.LanguageSettings) error {
	if _, ok := domain.ParseLanguage(lang.Preference); !ok {
		return fmt.Errorf("language.preference unknown: %s", lang.Preference)
	}
	switch strings.ToLower(lang.ArabicScript) {
	case "urdu", "arabic":
	default:
		return fmt.Errorf("language.arabic_script must be urdu|arabic, got %s", lang.ArabicScript)
	}
	return nil
}

func providerNames() string {
	names := make([]string, 0, domain.ProviderCount)
	for _, id := range domain.AllProviders() {
		names = append(names, id.String())
	}
	return strings.Join(names, "|")
}
