// Package executor runs command lines and pipelines on the host without a
// shell interpreter.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/pkg/filesystem"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// ExitCommandNotFound is reported when argv[0] is not on PATH.
const ExitCommandNotFound = 127

// ErrEmptyCommand is returned for blank lines and empty pipeline stages.
var ErrEmptyCommand = errors.New("empty command")

// LocalExecutor runs commands on the host. When Stdout or Stderr are set the
// output streams there instead of being captured.
type LocalExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Dir    func() string
	home   func() string
}

// NewLocalExecutor builds an executor capturing output.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{home: filesystem.UserHomeDir}
}

// NewStreamingExecutor builds an executor attached to the given streams.
func NewStreamingExecutor(stdin io.Reader, stdout, stderr io.Writer) *LocalExecutor {
	return &LocalExecutor{Stdin: stdin, Stdout: stdout, Stderr: stderr, home: filesystem.UserHomeDir}
}

// Execute implements ports.CommandExecutor. The line is split on "|" into
// stages and each stage on whitespace; arguments starting with "~" are
// expanded.
func (e *LocalExecutor) Execute(ctx context.Context, line string) (domain.ExecutionResult, error) {
	stages, err := SplitPipeline(line)
	if err != nil {
		return domain.ExecutionResult{Err: err, ExitCode: 1}, err
	}
	for i := range stages {
		stages[i] = ExpandTilde(stages[i], e.homeDir())
	}
	for _, argv := range stages {
		if _, err := exec.LookPath(argv[0]); err != nil {
			notFound := fmt.Errorf("%s: command not found", argv[0])
			return domain.ExecutionResult{ExitCode: ExitCommandNotFound, Err: notFound}, notFound
		}
	}

	cmds := make([]*exec.Cmd, len(stages))
	for i, argv := range stages {
		cmds[i] = exec.CommandContext(ctx, argv[0], argv[1:]...)
		if e.Dir != nil {
			cmds[i].Dir = e.Dir()
		}
	}

	var stdout, stderr bytes.Buffer
	cmds[0].Stdin = e.Stdin
	pipes := make([]io.ReadCloser, 0, len(cmds)-1)
	for i := 1; i < len(cmds); i++ {
		pipe, err := cmds[i-1].StdoutPipe()
		if err != nil {
			closeAll(pipes)
			return domain.ExecutionResult{Err: err, ExitCode: 1}, err
		}
		pipes = append(pipes, pipe)
		cmds[i].Stdin = pipe
	}
	last := cmds[len(cmds)-1]
	last.Stdout = pick(e.Stdout, &stdout)
	for _, c := range cmds {
		c.Stderr = pick(e.Stderr, &stderr)
	}

	start := time.Now()
	runErr := runPipeline(cmds, pipes)
	result := domain.ExecutionResult{
		Ran:        runErr == nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.Ran = true
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if runErr != nil {
		result.ExitCode = 1
		result.Err = runErr
		return result, runErr
	}
	return result, nil
}

// runPipeline starts every stage before waiting on any of them. The exit
// status of the last stage is the status of the pipeline. pipes[i] connects
// stage i to stage i+1. When a stage fails to start, the pipes are closed and
// the started stages killed so that none of them blocks on a full pipe.
func runPipeline(cmds []*exec.Cmd, pipes []io.ReadCloser) error {
	started := 0
	var startErr error
	for _, c := range cmds {
		if err := c.Start(); err != nil {
			startErr = err
			break
		}
		started++
	}
	if startErr != nil {
		closeAll(pipes)
		for i := 0; i < started; i++ {
			_ = cmds[i].Process.Kill()
		}
	}
	var lastErr error
	for i := 0; i < started; i++ {
		err := cmds[i].Wait()
		if i == len(cmds)-1 {
			lastErr = err
		}
	}
	if startErr != nil {
		return startErr
	}
	return lastErr
}

func closeAll(pipes []io.ReadCloser) {
	for _, p := range pipes {
		_ = p.Close()
	}
}

func pick(w io.Writer, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func (e *LocalExecutor) homeDir() string {
	if e.home != nil {
		return e.home()
	}
	return filesystem.UserHomeDir()
}

// SplitPipeline splits a line on "|" and each stage on whitespace. Quoting is
// not interpreted.
func SplitPipeline(line string) ([][]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyCommand
	}
	parts := strings.Split(line, "|")
	stages := make([][]string, 0, len(parts))
	for _, part := range parts {
		argv := strings.Fields(part)
		if len(argv) == 0 {
			return nil, fmt.Errorf("syntax error near '|': %w", ErrEmptyCommand)
		}
		stages = append(stages, argv)
	}
	return stages, nil
}

// ExpandTilde replaces a leading "~" in each argument with home. "~user"
// forms are left alone.
func ExpandTilde(argv []string, home string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		switch {
		case arg == "~":
			out[i] = home
		case strings.HasPrefix(arg, "~/"):
			out[i] = home + arg[1:]
		default:
			out[i] = arg
		}
	}
	return out
}

// Capture runs argv and returns its combined output truncated to limit
// bytes.
func Capture(ctx context.Context, argv []string, limit int) (string, error) {
	if len(argv) == 0 {
		return "", ErrEmptyCommand
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return "", fmt.Errorf("%s: command not found", argv[0])
	}
	out := &limitedBuffer{limit: limit}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = os.Environ()
	err := cmd.Run()
	return out.String(), err
}

// limitedBuffer keeps the first limit bytes and discards the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		b.buf.Write(p)
		return len(p), nil
	}
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
