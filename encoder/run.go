package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runCommand executes one encoder invocation and folds the tail of its
// stderr into the returned error, since every tool here reports the actual
// problem there rather than in the exit code.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w%s", name, err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last few lines, collapsed to one.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return ": " + strings.Join(lines, " | ")
}
