package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

var knownScanners = map[string]bool{
	"nmap":     true,
	"masscan":  true,
	"rustscan": true,
}

// NmapScanner runs network scans for SCAN directives.
type NmapScanner struct {
	Limit   int
	capture func(ctx context.Context, argv []string, limit int) (string, error)
}

// NewNmapScanner builds a scanner capturing at most domain.ScanOutputLimit
// bytes.
func NewNmapScanner() *NmapScanner {
	return &NmapScanner{Limit: domain.ScanOutputLimit, capture: Capture}
}

// Argv builds the scan command. A target that already starts with a known
// scanner is used as the command line; anything else is scanned with
// "nmap -sV".
func (s *NmapScanner) Argv(target string) []string {
	fields := strings.Fields(target)
	if len(fields) > 0 && knownScanners[strings.ToLower(fields[0])] {
		return fields
	}
	return append([]string{"nmap", "-sV"}, fields...)
}

// CommandLine implements ports.Scanner.
func (s *NmapScanner) CommandLine(target string) string {
	return strings.Join(s.Argv(target), " ")
}

// Scan implements ports.Scanner.
func (s *NmapScanner) Scan(ctx context.Context, target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("scan target is empty")
	}
	output, err := s.capture(ctx, s.Argv(target), s.Limit)
	if err != nil && output == "" {
		return "", err
	}
	return output, nil
}

var _ ports.Scanner = (*NmapScanner)(nil)
