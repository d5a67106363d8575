// Package tools wraps the external media tools behind small run-and-report
// contracts: a yt-dlp downloader, an ffprobe prober and an ffmpeg encoder.
// Subprocess execution goes through the Runner interface so tests can inject
// fakes.
package tools

import (
	"context"
	"os/exec"
	"strings"
)

type Runner interface {
	// Run executes the command and returns combined stdout and stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Output executes the command and returns stdout only.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func (r *CommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// excerpt trims tool output down to a short diagnostic suitable for a job's
// error message. Keeps the tail, where ffmpeg and yt-dlp put the cause.
func excerpt(output string) string {
	const max = 400
	s := strings.TrimSpace(output)
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
