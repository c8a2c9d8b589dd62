package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes tmux commands.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// Exec runs the tmux binary found in PATH.
type Exec struct {
	// Socket selects a server with -S when set.
	Socket string
}

func (e Exec) Run(ctx context.Context, args ...string) (string, error) {
	if e.Socket != "" {
		args = append([]string{"-S", e.Socket}, args...)
	}
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return "", fmt.Errorf("tmux %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
		}
		return "", fmt.Errorf("tmux %s failed: %w", args[0], err)
	}
	return string(out), nil
}
