package contextcollector

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// DefaultTools are probed on PATH once per collector.
var DefaultTools = []string{
	"nmap", "masscan", "rustscan", "gobuster", "nikto", "sqlmap", "hydra",
	"john", "hashcat", "curl", "git", "docker", "python3", "go",
}

// Collector describes the machine the shell runs on so the assistant can
// tailor commands to it.
type Collector struct {
	Getwd    func() (string, error)
	Getenv   func(string) string
	LookPath func(string) (string, error)
	// Run executes a short helper command and returns its output.
	Run func(ctx context.Context, dir, name string, args ...string) string

	tools     []string
	toolsOnce sync.Once
	probe     []string
}

// NewCollector builds a collector over the process environment.
func NewCollector() *Collector {
	return &Collector{
		Getwd:    os.Getwd,
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		Run:      runCmd,
		probe:    DefaultTools,
	}
}

// Collect gathers a snapshot. Tool detection runs once; the working directory
// and git branch are read every time.
func (c *Collector) Collect(ctx context.Context) domain.SystemSnapshot {
	wd, _ := c.Getwd()
	snapshot := domain.SystemSnapshot{
		WorkingDir: wd,
		OS:         runtime.GOOS,
		Shell:      detectShell(c.Getenv),
		User:       c.Getenv("USER"),
		Tools:      c.detectTools(),
	}
	if wd != "" {
		snapshot.GitBranch = strings.TrimSpace(c.Run(ctx, wd, "git", "rev-parse", "--abbrev-ref", "HEAD"))
	}
	return snapshot
}

// Describe renders Collect as prompt context.
func (c *Collector) Describe(ctx context.Context) string {
	s := c.Collect(ctx)
	var b strings.Builder
	b.WriteString("System context:\n")
	fmt.Fprintf(&b, "- working directory: %s\n", orUnknown(s.WorkingDir))
	fmt.Fprintf(&b, "- os: %s, shell: %s, user: %s\n", s.OS, s.Shell, orUnknown(s.User))
	if len(s.Tools) > 0 {
		fmt.Fprintf(&b, "- installed tools: %s\n", strings.Join(s.Tools, ", "))
	}
	if s.GitBranch != "" {
		fmt.Fprintf(&b, "- git branch: %s\n", s.GitBranch)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Collector) detectTools() []string {
	c.toolsOnce.Do(func() {
		for _, tool := range c.probe {
			if _, err := c.LookPath(tool); err == nil {
				c.tools = append(c.tools, tool)
			}
		}
		sort.Strings(c.tools)
	})
	return c.tools
}

func detectShell(getenv func(string) string) string {
	if shell := getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return "unknown"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func runCmd(ctx context.Context, dir string, name string, args ...string) string {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(cctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return string(out)
}
