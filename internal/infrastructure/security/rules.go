package security

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/pkg/filesystem"
)

// Tier is one ordered group of case-insensitive substring patterns.
type Tier struct {
	Level    domain.RiskLevel `yaml:"level"`
	Reason   string           `yaml:"reason"`
	Patterns []string         `yaml:"patterns"`
}

// Suggestion attaches a safer alternative to commands containing Pattern.
type Suggestion struct {
	Pattern string `yaml:"pattern"`
	Text    string `yaml:"text"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		Blocked     Tier         `yaml:"blocked"`
		High        Tier         `yaml:"high"`
		Medium      Tier         `yaml:"medium"`
		Low         Tier         `yaml:"low"`
		Suggestions []Suggestion `yaml:"suggestions"`
	} `yaml:"rules"`
}

// Reasons reported for each tier.
const (
	ReasonBlocked = "Command contains a blocked pattern that could cause severe system damage"
	ReasonHigh    = "Command contains high-risk operations that could cause data loss"
	ReasonMedium  = "Command involves system modifications"
	ReasonLow     = "Command may modify files or system state"
	ReasonSafe    = "Command appears safe to execute"
)

// DefaultRules returns the built-in tiers.
func DefaultRules() RulesFile {
	var rules RulesFile
	rules.Rules.Blocked = Tier{
		Level:  domain.RiskCritical,
		Reason: ReasonBlocked,
		Patterns: []string{
			"rm -rf /",
			"rm -rf /*",
			":(){ :|:& };:",
			"> /dev/sda",
			"dd if=/dev/zero of=/dev/sd",
			"mkfs.",
			"chmod -R 777 /",
			"chmod 777 /",
		},
	}
	rules.Rules.High = Tier{
		Level:  domain.RiskHigh,
		Reason: ReasonHigh,
		Patterns: []string{
			"rm -rf", "rm -r", "sudo rm", "sudo dd", "fdisk", "mkfs", "format",
			"> /dev/", "chmod 777", "chmod -R", "chown -R", "kill -9", "pkill",
			"shutdown", "reboot", "poweroff", "init 0", "init 6",
		},
	}
	rules.Rules.Medium = Tier{
		Level:  domain.RiskMedium,
		Reason: ReasonMedium,
		Patterns: []string{
			"sudo", "su -", "passwd", "adduser", "useradd", "deluser", "userdel",
			"chmod", "chown", "mount", "umount", "apt ", "apt-get", "yum ", "dnf ",
			"pip install", "npm install -g", "systemctl", "service",
		},
	}
	rules.Rules.Low = Tier{
		Level:  domain.RiskLow,
		Reason: ReasonLow,
		Patterns: []string{
			"git push", "git reset", "git checkout", "mv ", "cp -r", "tar ", "zip ", "unzip ",
		},
	}
	rules.Rules.Suggestions = []Suggestion{
		{Pattern: "rm -rf", Text: "Consider using 'rm -ri' for interactive mode or 'trash-put' for safer deletion"},
		{Pattern: "chmod 777", Text: "Consider using more restrictive permissions like 'chmod 755' or 'chmod 644'"},
	}
	return rules
}

// LoadRules reads a rules file. A missing file yields the defaults; tiers left
// empty in the file are filled from the defaults as well.
func LoadRules(path string) (RulesFile, error) {
	defaults := DefaultRules()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(filesystem.ExpandHome(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return RulesFile{}, err
	}

	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, err
	}
	hydrate(&rules.Rules.Blocked, defaults.Rules.Blocked)
	hydrate(&rules.Rules.High, defaults.Rules.High)
	hydrate(&rules.Rules.Medium, defaults.Rules.Medium)
	hydrate(&rules.Rules.Low, defaults.Rules.Low)
	if len(rules.Rules.Suggestions) == 0 {
		rules.Rules.Suggestions = defaults.Rules.Suggestions
	}
	return rules, nil
}

func hydrate(tier *Tier, fallback Tier) {
	if len(tier.Patterns) == 0 {
		tier.Patterns = fallback.Patterns
	}
	if tier.Reason == "" {
		tier.Reason = fallback.Reason
	}
	tier.Level = fallback.Level
}
