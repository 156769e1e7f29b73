package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCapturesOutput(t *testing.T) {
	exec := NewLocalExecutor()

	result, err := exec.Execute(context.Background(), "echo hello   world")
	require.NoError(t, err)
	assert.True(t, result.Ran)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello world\n", result.Stdout)
}

func TestExecutePipeline(t *testing.T) {
	exec := NewLocalExecutor()

	result, err := exec.Execute(context.Background(), "echo hello world | tr a-z A-Z | tr -d O")
	require.NoError(t, err)
	assert.Equal(t, "HELL WRLD\n", result.Stdout)
}

func TestExecuteNonZeroExit(t *testing.T) {
	result, err := NewLocalExecutor().Execute(context.Background(), "false")
	require.NoError(t, err)
	assert.True(t, result.Ran)
	assert.Equal(t, 1, result.ExitCode)
}

func TestExecuteCommandNotFound(t *testing.T) {
	result, err := NewLocalExecutor().Execute(context.Background(), "definitely-not-a-command-xyz --flag")
	require.Error(t, err)
	assert.Equal(t, "definitely-not-a-command-xyz: command not found", err.Error())
	assert.Equal(t, ExitCommandNotFound, result.ExitCode)
	assert.False(t, result.Ran)
}

func TestExecuteStreamsWhenWritersSet(t *testing.T) {
	var out bytes.Buffer
	exec := NewStreamingExecutor(strings.NewReader("piped input\n"), &out, &out)
	exec.home = func() string { return "/home/tester" }

	result, err := exec.Execute(context.Background(), "cat")
	require.NoError(t, err)
	assert.Empty(t, result.Stdout)
	assert.Equal(t, "piped input\n", out.String())

	out.Reset()
	_, err = exec.Execute(context.Background(), "echo ~/notes")
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/notes\n", out.String())
}

func TestSplitPipeline(t *testing.T) {
	stages, err := SplitPipeline("ls -la | grep go |wc -l")
	require.NoError(t, err)
	want := [][]string{{"ls", "-la"}, {"grep", "go"}, {"wc", "-l"}}
	if diff := cmp.Diff(want, stages); diff != "" {
		t.Fatalf("SplitPipeline mismatch (-want +got):\n%s", diff)
	}

	_, err = SplitPipeline("   ")
	assert.True(t, errors.Is(err, ErrEmptyCommand))
	_, err = SplitPipeline("ls | | wc")
	assert.True(t, errors.Is(err, ErrEmptyCommand))
}

func TestExpandTilde(t *testing.T) {
	got := ExpandTilde([]string{"ls", "~", "~/src", "~bob", "a~b"}, "/home/me")
	assert.Equal(t, []string{"ls", "/home/me", "/home/me/src", "~bob", "a~b"}, got)
}

func TestLimitedBuffer(t *testing.T) {
	buf := &limitedBuffer{limit: 5}
	n, err := buf.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, _ = buf.Write([]byte("defgh"))
	assert.Equal(t, 5, n)
	assert.Equal(t, "abcde", buf.String())
}

func TestCapture(t *testing.T) {
	out, err := Capture(context.Background(), []string{"echo", "0123456789"}, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", out)

	_, err = Capture(context.Background(), []string{"no-such-binary-xyz"}, 10)
	assert.EqualError(t, err, "no-such-binary-xyz: command not found")
}

func TestNmapScanner(t *testing.T) {
	var gotArgv []string
	var gotLimit int
	scanner := NewNmapScanner()
	scanner.capture = func(_ context.Context, argv []string, limit int) (string, error) {
		gotArgv, gotLimit = argv, limit
		return "22/tcp open ssh\n", nil
	}

	out, err := scanner.Scan(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "22/tcp open ssh\n", out)
	assert.Equal(t, []string{"nmap", "-sV", "10.0.0.5"}, gotArgv)
	assert.Equal(t, 64*1024, gotLimit)

	assert.Equal(t, "nmap -p 80 10.0.0.5", scanner.CommandLine("nmap -p 80 10.0.0.5"))
	assert.Equal(t, "masscan 10.0.0.0/24", scanner.CommandLine("masscan 10.0.0.0/24"))

	_, err = scanner.Scan(context.Background(), " ")
	assert.Error(t, err)
}

func TestNmapScannerKeepsPartialOutputOnError(t *testing.T) {
	scanner := NewNmapScanner()
	scanner.capture = func(context.Context, []string, int) (string, error) {
		return "Host seems down", errors.New("exit status 1")
	}
	out, err := scanner.Scan(context.Background(), "10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, "Host seems down", out)
}

func TestRunPipelineReleasesStartedStagesWhenLaterStageFails(t *testing.T) {
	producer := exec.Command("yes")
	consumer := exec.Command("/nonexistent/cortex-stage")
	pipe, err := producer.StdoutPipe()
	require.NoError(t, err)
	consumer.Stdin = pipe

	done := make(chan error, 1)
	go func() {
		done <- runPipeline([]*exec.Cmd{producer, consumer}, []io.ReadCloser{pipe})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		_ = producer.Process.Kill()
		t.Fatal("pipeline did not return after a stage failed to start")
	}
}
