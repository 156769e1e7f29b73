// Package doctor runs environment diagnostics for the shell.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	configapp "github.com/doeshing/cortex-shell/internal/application/config"
	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	// Providers returns the discovered backends.
	Providers func(ctx context.Context) []domain.ProviderDescriptor
	// LoadRules validates the risk rules file.
	LoadRules func(path string) error
	LookPath  func(file string) (string, error)
}

// Run executes checks and returns a report. Checks after the config load run
// concurrently; their order in the report is fixed.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, errors.New("doctor.Service dependencies not satisfied")
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.HealthReport{Checks: []domain.HealthCheck{fail("Config file", fmt.Sprintf("load failed: %v", err))}}, err
	}
	first := ok("Config file", fmt.Sprintf("loaded version %s", cfg.ConfigFormatVersion))
	if err := configapp.Validate(cfg); err != nil {
		first = fail("Config file", err.Error())
	}

	checks := []func(context.Context) domain.HealthCheck{
		func(context.Context) domain.HealthCheck { return s.rulesCheck(cfg.Security) },
		func(context.Context) domain.HealthCheck { return auditCheck(cfg.Audit) },
		func(context.Context) domain.HealthCheck { return s.scannerCheck() },
		s.backendCheck,
	}
	results := make([]domain.HealthCheck, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = check(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.HealthReport{}, err
	}

	return domain.HealthReport{Checks: append([]domain.HealthCheck{first}, results...)}, nil
}

func (s *Service) rulesCheck(sec domain.SecuritySettings) domain.HealthCheck {
	if s.LoadRules == nil {
		return warn("Risk rules", "rules loader not initialized")
	}
	if err := s.LoadRules(sec.RulesFile); err != nil {
		return fail("Risk rules", err.Error())
	}
	if _, err := os.Stat(sec.RulesFile); errors.Is(err, os.ErrNotExist) {
		return ok("Risk rules", fmt.Sprintf("built-in tiers (no %s), threshold %s", sec.RulesFile, sec.Threshold))
	}
	return ok("Risk rules", fmt.Sprintf("loaded %s, threshold %s", sec.RulesFile, sec.Threshold))
}

func auditCheck(audit domain.AuditSettings) domain.HealthCheck {
	if !audit.Enabled {
		return warn("Audit log", "disabled")
	}
	dir := filepath.Dir(audit.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return fail("Audit log", fmt.Sprintf("directory %s: %v", dir, err))
	}
	if !info.IsDir() {
		return fail("Audit log", fmt.Sprintf("%s is not a directory", dir))
	}
	details := audit.Path
	if audit.MirrorSQLite {
		details += " (mirrored to " + audit.SQLitePath + ")"
	}
	return ok("Audit log", details)
}

func (s *Service) scannerCheck() domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath("nmap")
	if err != nil {
		return warn("Scanner", "nmap not found; SCAN directives will fail")
	}
	return ok("Scanner", path)
}

func (s *Service) backendCheck(ctx context.Context) domain.HealthCheck {
	if s.Providers == nil {
		return warn("AI backends", "provider discovery not initialized")
	}
	var ready, missing []string
	for _, d := range s.Providers(ctx) {
		if d.Enabled {
			ready = append(ready, d.ID.String())
			continue
		}
		if d.Local {
			missing = append(missing, d.ID.String()+" (not reachable)")
		} else {
			missing = append(missing, d.ID.String()+" (set "+d.CredentialEnv+")")
		}
	}
	if len(ready) == 0 {
		return fail("AI backends", "none configured: "+strings.Join(missing, ", "))
	}
	details := "ready: " + strings.Join(ready, ", ")
	if len(missing) > 0 {
		details += "; missing: " + strings.Join(missing, ", ")
	}
	return ok("AI backends", details)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
