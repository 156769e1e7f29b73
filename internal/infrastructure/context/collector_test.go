package contextcollector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCollector(branch string) (*Collector, *int) {
	lookups := 0
	installed := map[string]bool{"nmap": true, "git": true}
	c := &Collector{
		Getwd: func() (string, error) { return "/srv/app", nil },
		Getenv: func(key string) string {
			return map[string]string{"SHELL": "/bin/zsh", "USER": "alice"}[key]
		},
		LookPath: func(tool string) (string, error) {
			lookups++
			if installed[tool] {
				return "/usr/bin/" + tool, nil
			}
			return "", errors.New("not found")
		},
		Run: func(context.Context, string, string, ...string) string {
			return branch
		},
		probe: DefaultTools,
	}
	return c, &lookups
}

func TestCollect(t *testing.T) {
	c, lookups := newTestCollector("main\n")

	snapshot := c.Collect(context.Background())
	assert.Equal(t, "/srv/app", snapshot.WorkingDir)
	assert.Equal(t, "zsh", snapshot.Shell)
	assert.Equal(t, "alice", snapshot.User)
	assert.Equal(t, []string{"git", "nmap"}, snapshot.Tools)
	assert.Equal(t, "main", snapshot.GitBranch)

	first := *lookups
	c.Collect(context.Background())
	assert.Equal(t, first, *lookups, "tools are probed once")
}

func TestDescribe(t *testing.T) {
	c, _ := newTestCollector("")

	got := c.Describe(context.Background())
	assert.Contains(t, got, "System context:\n- working directory: /srv/app\n")
	assert.Contains(t, got, "shell: zsh, user: alice")
	assert.Contains(t, got, "- installed tools: git, nmap")
	assert.NotContains(t, got, "git branch")
}
